package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/beka-birhanu/mazebot/config"
	dmn "github.com/beka-birhanu/mazebot/domain"
	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/beka-birhanu/mazebot/service/i"
	"github.com/google/uuid"
)

const (
	defaultRobotID = "robot-0"
	saveTimeout    = 2 * time.Second
	publishTimeout = 500 * time.Millisecond
)

// Robot is the body a run drives, real or simulated.
type Robot interface {
	navigator.Perception
	navigator.Actuator
}

// RobotFactory returns the robot for a run configured by cfg. seed is the
// requested maze seed; zero selects the backend's default.
type RobotFactory func(cfg navigator.Config, seed int64) (Robot, error)

type activeRun struct {
	record *dmn.Run
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// RunManager runs navigations in the background, one at a time per robot.
// Implements i.RunManager.
type RunManager struct {
	robotID   string
	backend   string
	defaults  navigator.Config
	robots    RobotFactory
	repo      i.RunRepo
	lock      i.RobotLock
	publisher i.StatusPublisher
	reporter  navigator.Reporter
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	runs   map[uuid.UUID]*activeRun
	sync.RWMutex
}

// Config holds the dependencies of a RunManager. Publisher and Reporter are
// optional.
type Config struct {
	RobotID   string
	Backend   string
	Defaults  navigator.Config
	Robots    RobotFactory
	Repo      i.RunRepo
	Lock      i.RobotLock
	Publisher i.StatusPublisher
	Reporter  navigator.Reporter
	Logger    *log.Logger
}

// NewRunManager validates c and creates a RunManager.
func NewRunManager(c *Config) (*RunManager, error) {
	if c.Robots == nil || c.Repo == nil || c.Lock == nil || c.Logger == nil {
		return nil, errors.New("run manager requires robots, repo, lock and logger")
	}

	robotID := c.RobotID
	if robotID == "" {
		robotID = defaultRobotID
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RunManager{
		robotID:   robotID,
		backend:   c.Backend,
		defaults:  c.Defaults,
		robots:    c.Robots,
		repo:      c.Repo,
		lock:      c.Lock,
		publisher: c.Publisher,
		reporter:  c.Reporter,
		logger:    c.Logger,
		ctx:       ctx,
		cancel:    cancel,
		runs:      make(map[uuid.UUID]*activeRun),
	}, nil
}

// Start validates req, takes the robot lock and begins the run in the
// background.
func (m *RunManager) Start(ctx context.Context, req dmn.RunRequest) (uuid.UUID, error) {
	if err := m.ctx.Err(); err != nil {
		return uuid.Nil, fmt.Errorf("run manager is shut down: %w", err)
	}

	cfg, err := m.configFor(req)
	if err != nil {
		return uuid.Nil, err
	}

	lease, err := m.lock.Acquire(ctx, m.robotID)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := m.launch(ctx, cfg, req.Seed, lease)
	if err != nil {
		if rerr := lease.Release(); rerr != nil {
			m.logger.Printf("%s[ERROR]%s releasing robot %s: %s", config.LogErrorColor, config.LogColorReset, m.robotID, rerr)
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (m *RunManager) launch(ctx context.Context, cfg navigator.Config, seed int64, lease i.Lease) (uuid.UUID, error) {
	robot, err := m.robots(cfg, seed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("preparing robot: %w", err)
	}

	m.Lock()
	id := uuid.New()
	for {
		if _, ok := m.runs[id]; !ok {
			break
		}
		id = uuid.New()
	}
	run := &activeRun{
		record: dmn.NewRun(id, m.backend, cfg),
		done:   make(chan struct{}),
	}
	m.Unlock()

	opts := []navigator.Option{
		navigator.WithLogger(m.logger),
		navigator.WithReporter(m.observer(run)),
	}
	nav, err := navigator.New(cfg, robot, robot, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", i.ErrInvalidRunRequest, err)
	}

	if err := m.repo.Save(ctx, run.record); err != nil {
		return uuid.Nil, fmt.Errorf("recording run: %w", err)
	}

	runCtx, cancel := context.WithCancelCause(m.ctx)
	run.cancel = cancel

	m.Lock()
	m.runs[id] = run
	m.Unlock()

	m.wg.Add(1)
	go m.drive(runCtx, run, nav, lease)
	m.logger.Printf("%s[INFO]%s started run %s on %s", config.LogInfoColor, config.LogColorReset, id, m.robotID)
	return id, nil
}

func (m *RunManager) drive(ctx context.Context, run *activeRun, nav *navigator.Navigator, lease i.Lease) {
	defer m.wg.Done()

	watching := make(chan struct{})
	go func() {
		defer close(watching)
		select {
		case <-lease.Lost():
			m.logger.Printf("%s[ERROR]%s lost the lock on %s, stopping run %s", config.LogErrorColor, config.LogColorReset, m.robotID, run.record.ID)
			run.cancel(i.ErrRobotLockLost)
		case <-ctx.Done():
		}
	}()

	res, err := nav.Run(ctx)
	if cause := context.Cause(ctx); err != nil && errors.Is(cause, i.ErrRobotLockLost) {
		err = errors.Join(err, cause)
	}
	run.cancel(nil)
	<-watching
	if err != nil {
		m.logger.Printf("%s[ERROR]%s run %s: %s", config.LogErrorColor, config.LogColorReset, run.record.ID, err)
	}

	m.Lock()
	run.record.Finish(res, err)
	record := *run.record
	m.Unlock()

	saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	if serr := m.repo.Save(saveCtx, &record); serr != nil {
		m.logger.Printf("%s[ERROR]%s saving run %s: %s", config.LogErrorColor, config.LogColorReset, record.ID, serr)
	}
	cancel()

	if rerr := lease.Release(); rerr != nil {
		m.logger.Printf("%s[ERROR]%s releasing robot %s: %s", config.LogErrorColor, config.LogColorReset, m.robotID, rerr)
	}

	m.Lock()
	delete(m.runs, record.ID)
	m.Unlock()
	close(run.done)

	m.logger.Printf("%s[INFO]%s run %s finished: %s", config.LogInfoColor, config.LogColorReset, record.ID, record.Status)
}

// observer folds status lines into the live record and forwards them.
func (m *RunManager) observer(run *activeRun) navigator.Reporter {
	return navigator.ReporterFunc(func(s navigator.Status) {
		m.Lock()
		run.record.Observe(s)
		id := run.record.ID
		m.Unlock()

		if m.reporter != nil {
			m.reporter.Report(s)
		}
		if m.publisher == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := m.publisher.Publish(ctx, id, s); err != nil {
			m.logger.Printf("%s[ERROR]%s publishing status of run %s: %s", config.LogErrorColor, config.LogColorReset, id, err)
		}
	})
}

// Run returns a copy of the live record, or the persisted one once the run
// has ended.
func (m *RunManager) Run(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	m.RLock()
	if run, ok := m.runs[id]; ok {
		record := *run.record
		m.RUnlock()
		return &record, nil
	}
	m.RUnlock()

	return m.repo.ByID(ctx, id)
}

// List returns persisted runs with live records in place of their stored
// snapshots.
func (m *RunManager) List(ctx context.Context, limit int) ([]*dmn.Run, error) {
	runs, err := m.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	m.RLock()
	defer m.RUnlock()
	for idx, stored := range runs {
		if run, ok := m.runs[stored.ID]; ok {
			record := *run.record
			runs[idx] = &record
		}
	}
	return runs, nil
}

// Stop cancels an active run. It returns once cancellation is requested;
// use Wait to block until the robot has halted.
func (m *RunManager) Stop(id uuid.UUID) error {
	m.RLock()
	run, ok := m.runs[id]
	m.RUnlock()
	if !ok {
		return i.ErrRunNotActive
	}

	run.cancel(nil)
	m.logger.Printf("%s[INFO]%s stop requested for run %s", config.LogInfoColor, config.LogColorReset, id)
	return nil
}

// Wait blocks until the run has ended and returns its final record.
func (m *RunManager) Wait(ctx context.Context, id uuid.UUID) (*dmn.Run, error) {
	m.RLock()
	run, ok := m.runs[id]
	m.RUnlock()

	if ok {
		select {
		case <-run.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.repo.ByID(ctx, id)
}

// StopAll cancels every active run and waits for them to halt or for ctx to
// expire. No run can be started afterwards.
func (m *RunManager) StopAll(ctx context.Context) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// configFor applies the request overrides to the configured defaults.
func (m *RunManager) configFor(req dmn.RunRequest) (navigator.Config, error) {
	cfg := m.defaults

	if req.Priority != "" {
		p, err := maze.ParsePriority(req.Priority)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", i.ErrInvalidRunRequest, err)
		}
		cfg.Priority = p
	}

	if req.BacktrackTurn != "" {
		b, err := navigator.ParseBacktrackTurn(req.BacktrackTurn)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", i.ErrInvalidRunRequest, err)
		}
		cfg.Backtrack = b
	}

	if req.Target != nil {
		target := maze.CellPosition{Row: req.Target.Row, Col: req.Target.Col}
		if target.Row < 0 || target.Row >= cfg.Rows || target.Col < 0 || target.Col >= cfg.Cols {
			return cfg, fmt.Errorf("%w: target %s is outside the %dx%d grid", i.ErrInvalidRunRequest, target, cfg.Rows, cfg.Cols)
		}
		cfg.Target = target
	}

	return cfg, nil
}
