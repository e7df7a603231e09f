package runapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	requestTimeout  = 2 * time.Second
)

// RunController manages navigation runs.
type RunController struct {
	runManager i.RunManager
}

// NewRunController initializes a RunController.
func NewRunController(rm i.RunManager) (*RunController, error) {
	if rm == nil {
		return nil, errors.New("run manager is required")
	}
	return &RunController{runManager: rm}, nil
}

// RegisterPublic registers public routes.
func (rc *RunController) RegisterPublic(route *gin.RouterGroup) {
	runs := route.Group("/runs")
	{
		runs.GET("", rc.list)
		runs.GET("/:ID", rc.run)
	}
}

// RegisterProtected registers protected routes.
func (rc *RunController) RegisterProtected(route *gin.RouterGroup) {
	runs := route.Group("/runs")
	{
		runs.POST("", rc.start)
		runs.POST("/:ID/stop", rc.stop)
	}
}

// start begins a run on the robot.
func (rc *RunController) start(ctx *gin.Context) {
	var request StartRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	id, err := rc.runManager.Start(timeoutCtx, request.toDomain())
	switch {
	case err == nil:
		ctx.JSON(http.StatusAccepted, &StartResponse{ID: id})
	case errors.Is(err, i.ErrInvalidRunRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, i.ErrRobotBusy):
		ctx.JSON(http.StatusConflict, gin.H{"error": i.ErrRobotBusy.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while starting run"})
	}
}

// run returns one live or stored run.
func (rc *RunController) run(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	run, err := rc.runManager.Run(timeoutCtx, id)
	if err != nil {
		if errors.Is(err, i.ErrRunNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while loading run"})
		return
	}

	ctx.JSON(http.StatusOK, run)
}

// list returns recent runs; ?limit= bounds the page.
func (rc *RunController) list(ctx *gin.Context) {
	limit := defaultPageSize
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	runs, err := rc.runManager.List(timeoutCtx, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while listing runs"})
		return
	}

	ctx.JSON(http.StatusOK, &ListResponse{Runs: runs})
}

// stop cancels an active run.
func (rc *RunController) stop(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := rc.runManager.Stop(id); err != nil {
		if errors.Is(err, i.ErrRunNotActive) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while stopping run"})
		return
	}

	ctx.Status(http.StatusAccepted)
}

func parseID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return uuid.Nil, false
	}
	return id, true
}
