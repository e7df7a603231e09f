// Package domain holds the records the service persists and exposes.
package domain

import (
	"time"

	"github.com/beka-birhanu/mazebot/maze"
	"github.com/beka-birhanu/mazebot/navigator"
	"github.com/google/uuid"
)

// Run statuses as stored.
const (
	StatusRunning    = "running"
	StatusReached    = "reached"
	StatusUnsolvable = "unsolvable"
	StatusAborted    = "aborted"
)

// Cell is a grid position in stored records.
type Cell struct {
	Row int `bson:"row" json:"row"`
	Col int `bson:"col" json:"col"`
}

// RunRequest carries the per-run overrides accepted from operators. Zero
// values keep the configured defaults.
type RunRequest struct {
	Priority      string `json:"priority"`
	BacktrackTurn string `json:"backtrack_turn"`
	Target        *Cell  `json:"target"`
	Seed          int64  `json:"seed"`
}

// Run is the record of one navigation run.
type Run struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	Backend      string    `bson:"backend" json:"backend"`
	Rows         int       `bson:"rows" json:"rows"`
	Cols         int       `bson:"cols" json:"cols"`
	Start        Cell      `bson:"start" json:"start"`
	Target       Cell      `bson:"target" json:"target"`
	Priority     string    `bson:"priority" json:"priority"`
	Status       string    `bson:"status" json:"status"`
	Error        string    `bson:"error,omitempty" json:"error,omitempty"`
	Cycles       int       `bson:"cycles" json:"cycles"`
	ForwardMoves int       `bson:"forwardMoves" json:"forward_moves"`
	Backtracks   int       `bson:"backtracks" json:"backtracks"`
	Turns        int       `bson:"turns" json:"turns"`
	Position     Cell      `bson:"position" json:"position"`
	Heading      string    `bson:"heading" json:"heading"`
	LastMessage  string    `bson:"lastMessage,omitempty" json:"last_message,omitempty"`
	Path         []Cell    `bson:"path,omitempty" json:"path,omitempty"`
	Grid         []string  `bson:"grid,omitempty" json:"grid,omitempty"`
	StartedAt    time.Time `bson:"startedAt" json:"started_at"`
	EndedAt      time.Time `bson:"endedAt,omitempty" json:"ended_at,omitempty"`
}

// NewRun creates a running record for cfg.
func NewRun(id uuid.UUID, backend string, cfg navigator.Config) *Run {
	priority := cfg.Priority
	if priority == (maze.Priority{}) {
		priority = maze.DefaultPriority
	}

	return &Run{
		ID:        id,
		Backend:   backend,
		Rows:      cfg.Rows,
		Cols:      cfg.Cols,
		Start:     cellOf(cfg.Start),
		Target:    cellOf(cfg.Target),
		Priority:  priority.String(),
		Status:    StatusRunning,
		Position:  cellOf(cfg.Start),
		Heading:   cfg.StartHeading.String(),
		StartedAt: time.Now().UTC(),
	}
}

// Observe updates the live fields from a status line.
func (r *Run) Observe(s navigator.Status) {
	r.Cycles = s.Cycle
	r.Position = cellOf(s.Pose.Position())
	r.Heading = s.Pose.Heading.String()
	r.LastMessage = s.Message
}

// Finish copies the navigator's result into the record.
func (r *Run) Finish(res *navigator.Result, err error) {
	r.EndedAt = time.Now().UTC()
	if err != nil {
		r.Error = err.Error()
	}
	if res == nil {
		r.Status = StatusAborted
		return
	}

	r.Status = statusOf(res.Outcome)
	r.Cycles = res.Cycles
	r.ForwardMoves = res.ForwardMoves
	r.Backtracks = res.Backtracks
	r.Turns = res.Turns
	r.Position = cellOf(res.Final.Position())
	r.Heading = res.Final.Heading.String()

	r.Path = make([]Cell, len(res.Path))
	for i, p := range res.Path {
		r.Path[i] = cellOf(p)
	}
	r.Grid = renderGrid(res.Grid)
}

// Done reports whether the run has terminated.
func (r *Run) Done() bool {
	return r.Status != StatusRunning
}

func statusOf(o navigator.Outcome) string {
	switch o {
	case navigator.OutcomeReached:
		return StatusReached
	case navigator.OutcomeUnsolvable:
		return StatusUnsolvable
	case navigator.OutcomeRunning:
		return StatusRunning
	default:
		return StatusAborted
	}
}

func cellOf(p maze.CellPosition) Cell {
	return Cell{Row: p.Row, Col: p.Col}
}

// renderGrid stores one string per row: '.' visited, 'x' dead end,
// 'T' target, ' ' unvisited.
func renderGrid(grid [][]maze.CellState) []string {
	out := make([]string, len(grid))
	for i, row := range grid {
		b := make([]byte, len(row))
		for j, s := range row {
			switch s {
			case maze.Visited:
				b[j] = '.'
			case maze.DeadEnd:
				b[j] = 'x'
			case maze.Target:
				b[j] = 'T'
			default:
				b[j] = ' '
			}
		}
		out[i] = string(b)
	}
	return out
}
