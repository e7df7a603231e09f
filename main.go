package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/mazebot/api"
	api_i "github.com/beka-birhanu/mazebot/api/i"
	"github.com/beka-birhanu/mazebot/api/identity"
	runapi "github.com/beka-birhanu/mazebot/api/run"
	"github.com/beka-birhanu/mazebot/config"
	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/infrastruture/lock"
	"github.com/beka-birhanu/mazebot/infrastruture/repo"
	"github.com/beka-birhanu/mazebot/infrastruture/serialbot"
	"github.com/beka-birhanu/mazebot/infrastruture/telemetry"
	"github.com/beka-birhanu/mazebot/infrastruture/token"
	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/beka-birhanu/mazebot/service"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/beka-birhanu/mazebot/simulator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Exit codes of a single run.
const (
	exitReached    = 0
	exitFailed     = 1
	exitUnsolvable = 2
)

// Global variables for dependencies
var (
	mongoClient      *mongo.Client
	redisClient      *redis.Client
	serialController *serialbot.Controller
	navDefaults      navigator.Config
	robotFactory     service.RobotFactory
	runRepo          i.RunRepo
	robotLock        i.RobotLock
	statusPublisher  i.StatusPublisher
	runManager       *service.RunManager
	jwtTokenizer     i.Tokenizer
	authService      i.Authenticator
	controllers      []api_i.Controller
	router           *api.Router
	appLogger        *log.Logger
)

func fatal(format string, args ...any) {
	appLogger.Printf("%s[ERROR]%s "+format, append([]any{config.LogErrorColor, config.LogColorReset}, args...)...)
	os.Exit(exitFailed)
}

func initNavigatorDefaults() {
	heading, err := maze.ParseHeading(config.Envs.StartHeading)
	if err != nil {
		fatal("START_HEADING: %v", err)
	}
	priority, err := maze.ParsePriority(config.Envs.Priority)
	if err != nil {
		fatal("PRIORITY: %v", err)
	}
	backtrack, err := navigator.ParseBacktrackTurn(config.Envs.BacktrackTurn)
	if err != nil {
		fatal("BACKTRACK_TURN: %v", err)
	}

	cyclePause := time.Duration(config.Envs.CyclePauseMS) * time.Millisecond
	if cyclePause == 0 {
		cyclePause = -1
	}

	navDefaults = navigator.Config{
		Rows:             config.Envs.MazeRows,
		Cols:             config.Envs.MazeCols,
		Start:            maze.CellPosition{Row: config.Envs.StartRow, Col: config.Envs.StartCol},
		StartHeading:     heading,
		Target:           maze.CellPosition{Row: config.Envs.TargetRow, Col: config.Envs.TargetCol},
		FrontThresholdCM: config.Envs.FrontThresholdCM,
		Priority:         priority,
		Backtrack:        backtrack,
		CyclePause:       cyclePause,
	}
	appLogger.Printf("%s[INFO]%s %dx%d grid, target %s, priority %s", config.LogInfoColor, config.LogColorReset,
		navDefaults.Rows, navDefaults.Cols, navDefaults.Target, priority)
}

func initRobotFactory() {
	switch config.Envs.RobotBackend {
	case config.BackendSerial:
		timing := serialbot.Timing{
			Forward: time.Duration(config.Envs.ForwardMS) * time.Millisecond,
			Turn:    time.Duration(config.Envs.TurnMS) * time.Millisecond,
			Settle:  time.Duration(config.Envs.SettleMS) * time.Millisecond,
		}
		var err error
		serialController, err = serialbot.Open(config.Envs.SerialPort, serialbot.PortOptions{BaudRate: config.Envs.SerialBaud}, timing,
			config.NewLogger("SERIAL", config.ColorBlue, os.Stdout))
		if err != nil {
			fatal("opening robot controller: %v", err)
		}
		robotFactory = func(navigator.Config, int64) (service.Robot, error) {
			return serialController, nil
		}
		appLogger.Printf("%s[INFO]%s robot controller on %s", config.LogInfoColor, config.LogColorReset, config.Envs.SerialPort)

	default:
		robotFactory = func(cfg navigator.Config, seed int64) (service.Robot, error) {
			if seed == 0 {
				seed = config.Envs.SimSeed
			}
			world, err := simulator.NewWallMaze(cfg.Cols, cfg.Rows, rand.New(rand.NewSource(seed)))
			if err != nil {
				return nil, err
			}
			return simulator.NewRobot(world, maze.NewPose(cfg.Start, cfg.StartHeading)), nil
		}
		appLogger.Printf("%s[INFO]%s simulated robot, seed %d", config.LogInfoColor, config.LogColorReset, config.Envs.SimSeed)
	}
}

func initMongo(ctx context.Context) {
	if config.Envs.DBURI == "" {
		runRepo = repo.NewMemoryRunRepo()
		appLogger.Printf("%s[INFO]%s DB_URI not set, keeping runs in memory", config.LogInfoColor, config.LogColorReset)
		return
	}

	clientOptions := options.Client().ApplyURI(config.Envs.DBURI)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		fatal("Failed to connect to MongoDB: %v", err)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		fatal("MongoDB ping failed: %v", err)
	}
	runRepo = repo.NewRunRepo(mongoClient, config.Envs.DBName, "runs")
	appLogger.Printf("%s[INFO]%s Connected to MongoDB", config.LogInfoColor, config.LogColorReset)
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		robotLock = lock.NewLocalRobotLock()
		return
	}

	redisClient = redis.NewClient(&redis.Options{Addr: config.Envs.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fatal("Redis ping failed: %v", err)
	}
	robotLock = lock.NewRedisRobotLock(redisClient, config.Envs.RedisPrefix, 0, config.NewLogger("LOCK", config.ColorMagenta, os.Stdout))
	statusPublisher = telemetry.NewRedisPublisher(redisClient, config.Envs.RedisPrefix)
	appLogger.Printf("%s[INFO]%s Connected to Redis", config.LogInfoColor, config.LogColorReset)
}

func initRunManager() {
	var err error
	runManager, err = service.NewRunManager(&service.Config{
		RobotID:   config.Envs.RobotID,
		Backend:   config.Envs.RobotBackend,
		Defaults:  navDefaults,
		Robots:    robotFactory,
		Repo:      runRepo,
		Lock:      robotLock,
		Publisher: statusPublisher,
		Reporter:  telemetry.NewLogReporter(config.NewLogger("NAV", config.ColorCyan, os.Stdout)),
		Logger:    config.NewLogger("RUN-MANAGER", config.ColorMagenta, os.Stdout),
	})
	if err != nil {
		fatal("Creating run manager: %v", err)
	}
	appLogger.Printf("%s[INFO]%s Run manager initialized", config.LogInfoColor, config.LogColorReset)
}

func initControllers() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)

	runController, err := runapi.NewRunController(runManager)
	if err != nil {
		fatal("Creating run controller: %v", err)
	}
	controllers = append(controllers, runController)

	if config.Envs.OperatorKeyHash == "" {
		appLogger.Printf("%s[INFO]%s OPERATOR_KEY_HASH not set, token sign in disabled", config.LogInfoColor, config.LogColorReset)
		return
	}
	authService, err = service.NewAuthService(config.Envs.OperatorKeyHash, jwtTokenizer, 0)
	if err != nil {
		fatal("Creating auth service: %v", err)
	}
	controllers = append(controllers, identity.NewIdentityServer(authService))
}

func initRouter() {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             controllers,
		AuthorizationMiddleware: identity.Authoriz(jwtTokenizer),
	})
	appLogger.Printf("%s[INFO]%s Router initialized", config.LogInfoColor, config.LogColorReset)
}

// runOnce drives a single run and maps its outcome to an exit code.
func runOnce(ctx context.Context) int {
	id, err := runManager.Start(ctx, dmn.RunRequest{})
	if err != nil {
		appLogger.Printf("%s[ERROR]%s Starting run: %v", config.LogErrorColor, config.LogColorReset, err)
		return exitFailed
	}

	go func() {
		<-ctx.Done()
		_ = runManager.Stop(id)
	}()

	run, err := runManager.Wait(context.WithoutCancel(ctx), id)
	if err != nil {
		appLogger.Printf("%s[ERROR]%s Waiting for run: %v", config.LogErrorColor, config.LogColorReset, err)
		return exitFailed
	}

	for _, row := range run.Grid {
		appLogger.Printf("|%s|", row)
	}
	switch run.Status {
	case dmn.StatusReached:
		return exitReached
	case dmn.StatusUnsolvable:
		return exitUnsolvable
	default:
		return exitFailed
	}
}

func main() {
	appLogger = config.NewLogger("APP", config.ColorGreen, os.Stdout)

	// mazebot hash-key <key> prints the value for OPERATOR_KEY_HASH.
	if len(os.Args) == 3 && os.Args[1] == "hash-key" {
		hash, err := service.HashKey(os.Args[2])
		if err != nil {
			fatal("hashing key: %v", err)
		}
		fmt.Println(hash)
		return
	}

	config.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	initNavigatorDefaults()
	initRobotFactory()
	initMongo(initCtx)
	initRedis(initCtx)
	cancel()
	initRunManager()

	code := exitReached
	if config.Envs.RESTPort == 0 {
		code = runOnce(ctx)
	} else {
		initControllers()
		initRouter()
		if err := router.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Printf("%s[ERROR]%s Starting server: %v", config.LogErrorColor, config.LogColorReset, err)
			code = exitFailed
		}
	}

	shutdown(code)
}

// shutdown halts active runs and closes connections before exiting.
func shutdown(code int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runManager.StopAll(ctx); err != nil {
		appLogger.Printf("%s[ERROR]%s Stopping runs: %v", config.LogErrorColor, config.LogColorReset, err)
	}
	if serialController != nil {
		if err := serialController.Close(); err != nil {
			appLogger.Printf("%s[ERROR]%s Closing robot controller: %v", config.LogErrorColor, config.LogColorReset, err)
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if mongoClient != nil {
		_ = mongoClient.Disconnect(ctx)
	}

	os.Exit(code)
}
