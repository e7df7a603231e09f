package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/infrastruture/lock"
	"github.com/beka-birhanu/mazebot/infrastruture/repo"
	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/beka-birhanu/mazebot/simulator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	statuses map[uuid.UUID][]navigator.Status
	sync.Mutex
}

func (p *recordingPublisher) Publish(_ context.Context, id uuid.UUID, s navigator.Status) error {
	p.Lock()
	defer p.Unlock()
	p.statuses[id] = append(p.statuses[id], s)
	return nil
}

func (p *recordingPublisher) count(id uuid.UUID) int {
	p.Lock()
	defer p.Unlock()
	return len(p.statuses[id])
}

type fixture struct {
	manager   *RunManager
	repo      *repo.MemoryRunRepo
	publisher *recordingPublisher
	robots    []*simulator.Robot
	sync.Mutex
}

func newFixture(t *testing.T, rows, cols int, opts ...simulator.RobotOption) *fixture {
	t.Helper()
	f := &fixture{
		repo:      repo.NewMemoryRunRepo(),
		publisher: &recordingPublisher{statuses: make(map[uuid.UUID][]navigator.Status)},
	}

	factory := func(cfg navigator.Config, _ int64) (Robot, error) {
		world, err := simulator.NewOpenMaze(cfg.Cols, cfg.Rows)
		if err != nil {
			return nil, err
		}
		robot := simulator.NewRobot(world, maze.NewPose(cfg.Start, cfg.StartHeading), opts...)
		f.Lock()
		f.robots = append(f.robots, robot)
		f.Unlock()
		return robot, nil
	}

	m, err := NewRunManager(&Config{
		Backend: "sim",
		Defaults: navigator.Config{
			Rows:         rows,
			Cols:         cols,
			StartHeading: maze.East,
			Target:       maze.CellPosition{Row: rows - 1, Col: cols - 1},
			CyclePause:   -1,
		},
		Robots:    factory,
		Repo:      f.repo,
		Lock:      lock.NewLocalRobotLock(),
		Publisher: f.publisher,
		Logger:    log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	f.manager = m

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, m.StopAll(ctx))
	})
	return f
}

func (f *fixture) robot(idx int) *simulator.Robot {
	f.Lock()
	defer f.Unlock()
	return f.robots[idx]
}

func waitRun(t *testing.T, m *RunManager, id uuid.UUID) *dmn.Run {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run, err := m.Wait(ctx, id)
	require.NoError(t, err)
	return run
}

func TestRunReachesTarget(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()

	id, err := f.manager.Start(ctx, dmn.RunRequest{})
	require.NoError(t, err)

	run := waitRun(t, f.manager, id)
	assert.Equal(t, dmn.StatusReached, run.Status)
	assert.Equal(t, dmn.Cell{Row: 2, Col: 2}, run.Position)
	assert.Equal(t, dmn.Cell{Row: 2, Col: 2}, run.Target)
	assert.Equal(t, "sim", run.Backend)
	assert.Empty(t, run.Error)
	assert.False(t, run.EndedAt.IsZero())
	assert.NotEmpty(t, run.Path)
	assert.Len(t, run.Grid, 3)

	assert.GreaterOrEqual(t, f.publisher.count(id), 2)
	assert.Equal(t, 1, f.robot(0).Halts())

	stored, err := f.repo.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, run, stored)

	// The lock is released once the run ends.
	next, err := f.manager.Start(ctx, dmn.RunRequest{Priority: "right,front,left"})
	require.NoError(t, err)
	assert.Equal(t, dmn.StatusReached, waitRun(t, f.manager, next).Status)
	assert.Equal(t, "right,front,left", waitRun(t, f.manager, next).Priority)
}

func TestRunOverrides(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()

	id, err := f.manager.Start(ctx, dmn.RunRequest{Target: &dmn.Cell{Row: 0, Col: 2}, BacktrackTurn: "shortest"})
	require.NoError(t, err)

	run := waitRun(t, f.manager, id)
	assert.Equal(t, dmn.StatusReached, run.Status)
	assert.Equal(t, dmn.Cell{Row: 0, Col: 2}, run.Position)
}

func TestStartRejectsInvalidRequests(t *testing.T) {
	f := newFixture(t, 3, 3)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dmn.RunRequest
	}{
		{"Unknown priority", dmn.RunRequest{Priority: "up,down"}},
		{"Repeated priority", dmn.RunRequest{Priority: "left,left,right"}},
		{"Unknown backtrack", dmn.RunRequest{BacktrackTurn: "spin"}},
		{"Target outside grid", dmn.RunRequest{Target: &dmn.Cell{Row: 3, Col: 0}}},
		{"Negative target", dmn.RunRequest{Target: &dmn.Cell{Row: 0, Col: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.manager.Start(ctx, tt.req)
			assert.ErrorIs(t, err, i.ErrInvalidRunRequest)
		})
	}

	// Rejected requests never take the lock.
	id, err := f.manager.Start(ctx, dmn.RunRequest{})
	require.NoError(t, err)
	waitRun(t, f.manager, id)
}

func TestStopHaltsRobot(t *testing.T) {
	f := newFixture(t, 6, 8, simulator.WithMotionDurations(20*time.Millisecond, 20*time.Millisecond))
	ctx := context.Background()

	id, err := f.manager.Start(ctx, dmn.RunRequest{})
	require.NoError(t, err)

	_, err = f.manager.Start(ctx, dmn.RunRequest{})
	assert.ErrorIs(t, err, i.ErrRobotBusy)

	live, err := f.manager.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dmn.StatusRunning, live.Status)

	listed, err := f.manager.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)

	require.NoError(t, f.manager.Stop(id))
	run := waitRun(t, f.manager, id)
	assert.Equal(t, dmn.StatusAborted, run.Status)
	assert.NotEmpty(t, run.Error)
	assert.Equal(t, 1, f.robot(0).Halts())

	assert.ErrorIs(t, f.manager.Stop(id), i.ErrRunNotActive)
	assert.ErrorIs(t, f.manager.Stop(uuid.New()), i.ErrRunNotActive)
}

func TestUnknownRun(t *testing.T) {
	f := newFixture(t, 3, 3)
	_, err := f.manager.Run(context.Background(), uuid.New())
	assert.ErrorIs(t, err, i.ErrRunNotFound)
}

func TestStopAll(t *testing.T) {
	f := newFixture(t, 6, 8, simulator.WithMotionDurations(20*time.Millisecond, 20*time.Millisecond))
	ctx := context.Background()

	id, err := f.manager.Start(ctx, dmn.RunRequest{})
	require.NoError(t, err)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, f.manager.StopAll(stopCtx))

	run, err := f.repo.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dmn.StatusAborted, run.Status)

	_, err = f.manager.Start(ctx, dmn.RunRequest{})
	assert.Error(t, err)
}

func TestNewRunManagerValidation(t *testing.T) {
	_, err := NewRunManager(&Config{})
	assert.Error(t, err)
}

func TestFailingRobotFactory(t *testing.T) {
	boom := errors.New("no controller")
	l := lock.NewLocalRobotLock()
	m, err := NewRunManager(&Config{
		Defaults: navigator.Config{Rows: 2, Cols: 2, Target: maze.CellPosition{Row: 1, Col: 1}},
		Robots: func(navigator.Config, int64) (Robot, error) {
			return nil, boom
		},
		Repo:   repo.NewMemoryRunRepo(),
		Lock:   l,
		Logger: log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, m.StopAll(context.Background())) }()

	_, err = m.Start(context.Background(), dmn.RunRequest{})
	assert.ErrorIs(t, err, boom)

	lease, err := l.Acquire(context.Background(), defaultRobotID)
	require.NoError(t, err, "failed start must release the robot")
	require.NoError(t, lease.Release())
}

// losableLock hands out leases the test can mark as lost.
type losableLock struct {
	lost     chan struct{}
	released chan struct{}
}

func (l *losableLock) Acquire(context.Context, string) (i.Lease, error) {
	return l, nil
}

func (l *losableLock) Lost() <-chan struct{} { return l.lost }

func (l *losableLock) Release() error {
	close(l.released)
	return nil
}

func TestLostLockAbortsRun(t *testing.T) {
	var robot *simulator.Robot
	l := &losableLock{lost: make(chan struct{}), released: make(chan struct{})}
	m, err := NewRunManager(&Config{
		Defaults: navigator.Config{
			Rows:         6,
			Cols:         8,
			StartHeading: maze.East,
			Target:       maze.CellPosition{Row: 5, Col: 7},
			CyclePause:   -1,
		},
		Robots: func(cfg navigator.Config, _ int64) (Robot, error) {
			world, err := simulator.NewOpenMaze(cfg.Cols, cfg.Rows)
			if err != nil {
				return nil, err
			}
			robot = simulator.NewRobot(world, maze.NewPose(cfg.Start, cfg.StartHeading),
				simulator.WithMotionDurations(20*time.Millisecond, 20*time.Millisecond))
			return robot, nil
		},
		Repo:   repo.NewMemoryRunRepo(),
		Lock:   l,
		Logger: log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	defer func() { assert.NoError(t, m.StopAll(context.Background())) }()

	ctx := context.Background()
	id, err := m.Start(ctx, dmn.RunRequest{})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	close(l.lost)

	run := waitRun(t, m, id)
	assert.Equal(t, dmn.StatusAborted, run.Status)
	assert.Contains(t, run.Error, i.ErrRobotLockLost.Error())
	assert.Equal(t, 1, robot.Halts())

	select {
	case <-l.released:
	default:
		t.Fatal("lost lease was not released")
	}
}
