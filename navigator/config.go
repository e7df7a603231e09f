package navigator

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/mazebot/maze"
)

const (
	DefaultFrontThresholdCM = 15.0
	DefaultCyclePause       = 50 * time.Millisecond
)

var ErrInvalidConfig = errors.New("invalid navigator config")

// BacktrackTurn selects how the robot rotates to face a popped frontier
// cell.
type BacktrackTurn uint8

const (
	// BacktrackRightTurns rotates right in 90 degree steps until the
	// heading matches; at most three turns are needed.
	BacktrackRightTurns BacktrackTurn = iota
	// BacktrackShortest uses a single left, right or 180 degree rotation.
	BacktrackShortest
)

// ParseBacktrackTurn accepts "right" or "shortest".
func ParseBacktrackTurn(s string) (BacktrackTurn, error) {
	switch s {
	case "", "right":
		return BacktrackRightTurns, nil
	case "shortest":
		return BacktrackShortest, nil
	default:
		return BacktrackRightTurns, fmt.Errorf("%w: unknown backtrack turn %q", ErrInvalidConfig, s)
	}
}

func (b BacktrackTurn) String() string {
	if b == BacktrackShortest {
		return "shortest"
	}
	return "right"
}

// Config is fixed for the lifetime of a run.
type Config struct {
	Rows             int
	Cols             int
	Start            maze.CellPosition
	StartHeading     maze.Heading
	Target           maze.CellPosition
	FrontThresholdCM float64       // Front readings below this distance are walls.
	Priority         maze.Priority // Zero value selects maze.DefaultPriority.
	Backtrack        BacktrackTurn
	CyclePause       time.Duration // Pause between decision cycles; negative disables it.
}

// withDefaults fills unset fields and validates the rest.
func (c Config) withDefaults() (Config, error) {
	if c.FrontThresholdCM == 0 {
		c.FrontThresholdCM = DefaultFrontThresholdCM
	}
	if c.FrontThresholdCM < 0 {
		return c, fmt.Errorf("%w: negative front threshold %.1f", ErrInvalidConfig, c.FrontThresholdCM)
	}

	if c.Priority == (maze.Priority{}) {
		c.Priority = maze.DefaultPriority
	}
	if err := c.Priority.Validate(); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !c.StartHeading.Valid() {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, maze.ErrInvalidHeading)
	}

	if c.CyclePause == 0 {
		c.CyclePause = DefaultCyclePause
	}
	if c.CyclePause < 0 {
		c.CyclePause = 0
	}

	return c, nil
}
