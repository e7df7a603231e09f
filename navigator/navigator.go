/*
Package navigator explores an unknown rectangular grid with a robot that can
only sense its immediate surroundings, and drives it to a known target cell.

Each decision cycle senses the three forward-relative directions, picks the
first open and unexplored neighbor in a fixed priority order and moves into
it, remembering the cell it left on a frontier stack. When no neighbor
qualifies the cell is a dead end: the robot returns to the most recent
frontier cell. An empty frontier means the target cannot be reached from
what has been explored.

Position is dead reckoned. The navigator trusts that every motion completed
exactly and never corrects its pose from sensor data.
*/
package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/beka-birhanu/mazebot/config"
	"github.com/beka-birhanu/mazebot/maze"
)

const haltTimeout = 2 * time.Second

var (
	ErrMotion         = errors.New("motion failed")
	ErrHalt           = errors.New("halt failed")
	ErrBrokenFrontier = errors.New("frontier cell is not adjacent to the current cell")
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithReporter sets the status sink.
func WithReporter(r Reporter) Option {
	return func(n *Navigator) {
		if r != nil {
			n.reporter = r
		}
	}
}

// WithLogger sets the logger used for sensor faults and halt failures.
func WithLogger(l *log.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// Navigator is the decision engine. It exclusively owns the grid, pose and
// frontier; nothing else reads or writes them during a run. A Navigator is
// single use and not safe for concurrent use.
type Navigator struct {
	cfg        Config
	grid       *maze.Grid
	pose       maze.Pose
	frontier   *maze.Frontier
	perception Perception
	actuator   Actuator
	reporter   Reporter
	logger     *log.Logger

	cycles       int
	forwardMoves int
	backtracks   int
	turns        int
	path         []maze.CellPosition
	outcome      Outcome
}

// New validates cfg and builds a navigator positioned at the start cell.
func New(cfg Config, p Perception, a Actuator, opts ...Option) (*Navigator, error) {
	if p == nil || a == nil {
		return nil, fmt.Errorf("%w: perception and actuator are required", ErrInvalidConfig)
	}

	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	grid, err := maze.NewGrid(cfg.Rows, cfg.Cols, cfg.Start, cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	n := &Navigator{
		cfg:        cfg,
		grid:       grid,
		pose:       maze.NewPose(cfg.Start, cfg.StartHeading),
		frontier:   maze.NewFrontier(cfg.Rows * cfg.Cols),
		perception: p,
		actuator:   a,
		reporter:   nopReporter{},
		logger:     log.New(io.Discard, "", 0),
		path:       []maze.CellPosition{cfg.Start},
	}
	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Pose returns the current dead-reckoned pose.
func (n *Navigator) Pose() maze.Pose { return n.pose }

// Outcome returns the current outcome.
func (n *Navigator) Outcome() Outcome { return n.outcome }

// Result returns a summary of the run so far.
func (n *Navigator) Result() *Result {
	return &Result{
		Outcome:      n.outcome,
		Cycles:       n.cycles,
		ForwardMoves: n.forwardMoves,
		Backtracks:   n.backtracks,
		Turns:        n.turns,
		Final:        n.pose,
		Path:         append([]maze.CellPosition(nil), n.path...),
		Grid:         n.grid.Snapshot(),
	}
}

// Run repeats decision cycles until the target is reached, the frontier is
// exhausted, a motion fails or ctx is cancelled. The actuator is halted on
// every return path. Reaching the target and exhausting the frontier are
// outcomes, not errors.
func (n *Navigator) Run(ctx context.Context) (res *Result, err error) {
	defer func() {
		haltCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), haltTimeout)
		defer cancel()
		if herr := n.actuator.Halt(haltCtx); herr != nil {
			n.logger.Printf("%s[ERROR]%s halting robot: %s", config.LogErrorColor, config.LogColorReset, herr)
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrHalt, herr))
		}
		res = n.Result()
	}()

	n.emit(DecisionStart, Walls{}, fmt.Sprintf("target %s, priority %s", n.cfg.Target, n.cfg.Priority))

	for {
		outcome, err := n.Step(ctx)
		if err != nil {
			n.abort(err)
			return nil, err
		}
		if outcome.Terminal() {
			return nil, nil
		}

		if err := pause(ctx, n.cfg.CyclePause); err != nil {
			n.abort(err)
			return nil, err
		}
	}
}

// Step runs one sense, decide, act and update cycle. It does not halt the
// robot on a terminal outcome; Run does.
func (n *Navigator) Step(ctx context.Context) (Outcome, error) {
	if n.outcome.Terminal() {
		return n.outcome, nil
	}
	if err := ctx.Err(); err != nil {
		return n.outcome, err
	}

	n.cycles++
	here := n.pose.Position()
	if n.grid.StateAt(here.Row, here.Col) == maze.Target {
		return n.arrive(), nil
	}
	// NewGrid checks the start and forward moves only enter explorable
	// cells, so the pose is always in bounds and Mark cannot fail.
	_ = n.grid.Mark(here.Row, here.Col, maze.Visited)

	walls := n.sense(ctx)
	for _, rel := range n.cfg.Priority {
		if walls.Blocked(rel) {
			continue
		}
		next := here.Step(rel.Absolute(n.pose.Heading))
		if !n.grid.IsExplorable(next.Row, next.Col) {
			continue
		}

		n.emit(decisionFor(rel), walls, fmt.Sprintf("exploring %s", next))
		if err := n.explore(ctx, rel); err != nil {
			return n.outcome, err
		}
		return n.checkArrival(), nil
	}

	return n.backtrack(ctx, walls)
}

// sense reads the sensors. Faults mark the affected direction blocked for
// this cycle only.
func (n *Navigator) sense(ctx context.Context) Walls {
	var w Walls

	dist, err := n.perception.ReadFrontDistanceCM(ctx)
	switch {
	case err != nil:
		n.logger.Printf("%s[WARN]%s front sensor fault at %s, treating as wall: %s", config.LogWarnColor, config.LogColorReset, n.pose, err)
		w.Front = true
	case math.IsNaN(dist) || dist <= 0:
		n.logger.Printf("%s[WARN]%s invalid front reading %.1f at %s, treating as wall", config.LogWarnColor, config.LogColorReset, dist, n.pose)
		w.Front = true
	default:
		w.Front = dist < n.cfg.FrontThresholdCM
	}

	left, right, err := n.perception.ReadSideContacts(ctx)
	if err != nil {
		n.logger.Printf("%s[WARN]%s side sensor fault at %s, treating both sides as walls: %s", config.LogWarnColor, config.LogColorReset, n.pose, err)
		left, right = true, true
	}
	w.Left, w.Right = left, right

	return w
}

// explore turns toward rel and enters the neighboring cell. The cell being
// left is pushed onto the frontier only once the forward motion completed.
func (n *Navigator) explore(ctx context.Context, rel maze.Relative) error {
	switch rel {
	case maze.RelLeft:
		if err := n.rotateLeft(ctx); err != nil {
			return err
		}
	case maze.RelRight:
		if err := n.rotateRight(ctx); err != nil {
			return err
		}
	}

	from := n.pose.Position()
	if err := n.forward(ctx); err != nil {
		return err
	}
	n.frontier.Push(from)
	return nil
}

// backtrack marks the current cell a dead end and returns to the most
// recent frontier cell, or declares the maze unsolvable.
func (n *Navigator) backtrack(ctx context.Context, walls Walls) (Outcome, error) {
	here := n.pose.Position()
	// In bounds for the same reason as in Step.
	_ = n.grid.Mark(here.Row, here.Col, maze.DeadEnd)

	prev, ok := n.frontier.Pop()
	if !ok {
		n.outcome = OutcomeUnsolvable
		n.emit(DecisionTrapped, walls, fmt.Sprintf("maze is unsolvable: trapped at %s", here))
		return n.outcome, nil
	}

	want, ok := maze.HeadingBetween(here, prev)
	if !ok {
		return n.outcome, fmt.Errorf("%w: %s -> %s", ErrBrokenFrontier, here, prev)
	}

	n.emit(DecisionBacktrack, walls, fmt.Sprintf("dead end, returning to %s", prev))
	if err := n.face(ctx, want); err != nil {
		return n.outcome, err
	}
	if err := n.forward(ctx); err != nil {
		return n.outcome, err
	}
	n.backtracks++

	return n.checkArrival(), nil
}

// face rotates until the heading equals want.
func (n *Navigator) face(ctx context.Context, want maze.Heading) error {
	if n.cfg.Backtrack == BacktrackShortest {
		switch n.pose.Heading.RightTurnsTo(want) {
		case 1:
			return n.rotateRight(ctx)
		case 2:
			return n.rotate180(ctx)
		case 3:
			return n.rotateLeft(ctx)
		}
		return nil
	}

	for n.pose.Heading != want {
		if err := n.rotateRight(ctx); err != nil {
			return err
		}
	}
	return nil
}

// The motion helpers update the pose only after the actuator confirms the
// motion.

func (n *Navigator) forward(ctx context.Context) error {
	if err := n.actuator.DriveForwardOneCell(ctx); err != nil {
		return fmt.Errorf("%w: drive forward from %s: %w", ErrMotion, n.pose, err)
	}
	n.pose.Advance()
	n.forwardMoves++
	n.path = append(n.path, n.pose.Position())
	return nil
}

func (n *Navigator) rotateLeft(ctx context.Context) error {
	if err := n.actuator.RotateLeft90(ctx); err != nil {
		return fmt.Errorf("%w: rotate left at %s: %w", ErrMotion, n.pose, err)
	}
	n.pose.TurnLeft()
	n.turns++
	return nil
}

func (n *Navigator) rotateRight(ctx context.Context) error {
	if err := n.actuator.RotateRight90(ctx); err != nil {
		return fmt.Errorf("%w: rotate right at %s: %w", ErrMotion, n.pose, err)
	}
	n.pose.TurnRight()
	n.turns++
	return nil
}

func (n *Navigator) rotate180(ctx context.Context) error {
	if err := n.actuator.Rotate180(ctx); err != nil {
		return fmt.Errorf("%w: rotate 180 at %s: %w", ErrMotion, n.pose, err)
	}
	n.pose.Turn180()
	n.turns++
	return nil
}

// checkArrival ends the run when the cell just entered is the target.
func (n *Navigator) checkArrival() Outcome {
	here := n.pose.Position()
	if n.grid.StateAt(here.Row, here.Col) == maze.Target {
		return n.arrive()
	}
	return n.outcome
}

func (n *Navigator) arrive() Outcome {
	n.outcome = OutcomeReached
	n.emit(DecisionReached, Walls{}, fmt.Sprintf("target reached at %s", n.pose.Position()))
	return n.outcome
}

func (n *Navigator) abort(err error) {
	n.outcome = OutcomeAborted
	n.emit(DecisionAborted, Walls{}, err.Error())
}

func (n *Navigator) emit(d Decision, w Walls, msg string) {
	n.reporter.Report(Status{
		Cycle:         n.cycles,
		Pose:          n.pose,
		Walls:         w,
		Decision:      d,
		FrontierDepth: n.frontier.Len(),
		Outcome:       n.outcome,
		Message:       msg,
		At:            time.Now(),
	})
}

// pause waits d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
