package domain

import (
	"errors"
	"testing"

	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRunLifecycle(t *testing.T) {
	cfg := navigator.Config{
		Rows: 1, Cols: 3,
		StartHeading: maze.East,
		Target:       maze.CellPosition{Row: 0, Col: 2},
	}
	run := NewRun(uuid.New(), "sim", cfg)

	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "left,front,right", run.Priority)
	assert.False(t, run.Done())

	run.Observe(navigator.Status{
		Cycle:   2,
		Pose:    maze.NewPose(maze.CellPosition{Row: 0, Col: 1}, maze.East),
		Message: "exploring (0,2)",
	})
	assert.Equal(t, Cell{Row: 0, Col: 1}, run.Position)
	assert.Equal(t, "East", run.Heading)
	assert.Equal(t, 2, run.Cycles)

	run.Finish(&navigator.Result{
		Outcome:      navigator.OutcomeReached,
		Cycles:       3,
		ForwardMoves: 2,
		Final:        maze.NewPose(maze.CellPosition{Row: 0, Col: 2}, maze.East),
		Path:         []maze.CellPosition{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
		Grid:         [][]maze.CellState{{maze.Visited, maze.Visited, maze.Target}},
	}, nil)

	assert.True(t, run.Done())
	assert.Equal(t, StatusReached, run.Status)
	assert.Equal(t, []string{"..T"}, run.Grid)
	assert.Len(t, run.Path, 3)
	assert.Empty(t, run.Error)
	assert.False(t, run.EndedAt.IsZero())
}

func TestRunFinishWithError(t *testing.T) {
	run := NewRun(uuid.New(), "serial", navigator.Config{Rows: 2, Cols: 2})
	run.Finish(&navigator.Result{Outcome: navigator.OutcomeAborted}, errors.New("motion failed"))

	assert.Equal(t, StatusAborted, run.Status)
	assert.Equal(t, "motion failed", run.Error)

	other := NewRun(uuid.New(), "serial", navigator.Config{Rows: 2, Cols: 2})
	other.Finish(nil, errors.New("no robot"))
	assert.Equal(t, StatusAborted, other.Status)
}
