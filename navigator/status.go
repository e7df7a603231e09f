package navigator

import (
	"fmt"
	"strings"
	"time"

	"github.com/beka-birhanu/mazebot/maze"
)

// Outcome is the state of a run.
type Outcome uint8

const (
	OutcomeRunning    Outcome = iota // OutcomeRunning means the run has not terminated.
	OutcomeReached                   // OutcomeReached means the robot is on the target cell.
	OutcomeUnsolvable                // OutcomeUnsolvable means the frontier was exhausted first.
	OutcomeAborted                   // OutcomeAborted means a motion failed or the run was cancelled.
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeReached:
		return "reached"
	case OutcomeUnsolvable:
		return "unsolvable"
	case OutcomeAborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Terminal reports whether no further cycles will run.
func (o Outcome) Terminal() bool {
	return o != OutcomeRunning
}

// Decision is what the navigator chose to do in a cycle.
type Decision uint8

const (
	DecisionStart Decision = iota
	DecisionLeft
	DecisionFront
	DecisionRight
	DecisionBacktrack
	DecisionReached
	DecisionTrapped
	DecisionAborted
)

var decisionNames = map[Decision]string{
	DecisionStart:     "start",
	DecisionLeft:      "left",
	DecisionFront:     "front",
	DecisionRight:     "right",
	DecisionBacktrack: "backtrack",
	DecisionReached:   "reached",
	DecisionTrapped:   "trapped",
	DecisionAborted:   "aborted",
}

func (d Decision) String() string {
	if name, ok := decisionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Decision(%d)", uint8(d))
}

func decisionFor(r maze.Relative) Decision {
	switch r {
	case maze.RelLeft:
		return DecisionLeft
	case maze.RelRight:
		return DecisionRight
	default:
		return DecisionFront
	}
}

// Walls is the per-cycle sensed snapshot. It is never stored.
type Walls struct {
	Front bool
	Left  bool
	Right bool
}

// Blocked reports whether the relative direction r is physically blocked.
func (w Walls) Blocked(r maze.Relative) bool {
	switch r {
	case maze.RelLeft:
		return w.Left
	case maze.RelRight:
		return w.Right
	default:
		return w.Front
	}
}

func (w Walls) String() string {
	flag := func(name string, blocked bool) string {
		if blocked {
			return name + "=wall"
		}
		return name + "=open"
	}
	return strings.Join([]string{flag("L", w.Left), flag("F", w.Front), flag("R", w.Right)}, " ")
}

// Status is one progress line emitted by the navigator.
type Status struct {
	Cycle         int
	Pose          maze.Pose
	Walls         Walls
	Decision      Decision
	FrontierDepth int
	Outcome       Outcome
	Message       string
	At            time.Time
}

func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle %d at %s", s.Cycle, s.Pose)
	if s.Decision != DecisionStart && !s.Outcome.Terminal() {
		fmt.Fprintf(&b, " [%s]", s.Walls)
	}
	fmt.Fprintf(&b, " -> %s (frontier %d)", s.Decision, s.FrontierDepth)
	if s.Message != "" {
		b.WriteString(": " + s.Message)
	}
	return b.String()
}

// Result summarizes a finished or interrupted run.
type Result struct {
	Outcome      Outcome
	Cycles       int
	ForwardMoves int
	Backtracks   int
	Turns        int
	Final        maze.Pose
	Path         []maze.CellPosition
	Grid         [][]maze.CellState
}
