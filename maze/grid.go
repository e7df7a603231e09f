/*
Package maze holds the navigator's model of the world: the grid of cell
states, the dead-reckoned pose and the frontier stack used for
backtracking.

None of the types here perform I/O. They are owned by a single navigator
and are not safe for concurrent use.
*/
package maze

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxGridDimension = 64
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrOutOfBounds       = errors.New("cell is out of the grid")
	ErrStartOutOfBounds  = errors.New("start cell is out of the grid")
	ErrTargetOutOfBounds = errors.New("target cell is out of the grid")
)

// Grid is a fixed rows x cols array of cell states.
type Grid struct {
	rows   int
	cols   int
	target CellPosition
	cells  [][]CellState
}

// NewGrid creates a grid where every cell is Unvisited except start, which
// is Visited, and target, which is Target. When start and target coincide
// the cell is Target.
func NewGrid(rows, cols int, start, target CellPosition) (*Grid, error) {
	if min(rows, cols) <= 0 || max(rows, cols) > maxGridDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}

	cells := make([][]CellState, rows)
	for i := range cells {
		cells[i] = make([]CellState, cols)
	}

	g := &Grid{rows: rows, cols: cols, target: target, cells: cells}
	if !g.InBound(start.Row, start.Col) {
		return nil, fmt.Errorf("%w: %s", ErrStartOutOfBounds, start)
	}
	if !g.InBound(target.Row, target.Col) {
		return nil, fmt.Errorf("%w: %s", ErrTargetOutOfBounds, target)
	}

	g.cells[start.Row][start.Col] = Visited
	g.cells[target.Row][target.Col] = Target
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// TargetCell returns the designated exit cell.
func (g *Grid) TargetCell() CellPosition { return g.target }

// InBound reports whether row and col address a cell of the grid.
func (g *Grid) InBound(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// Mark sets the state of a cell.
func (g *Grid) Mark(row, col int, state CellState) error {
	if !g.InBound(row, col) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, row, col)
	}
	g.cells[row][col] = state
	return nil
}

// StateAt returns the state of an in-bounds cell. Out of bounds positions
// report Unvisited; use Lookup when the distinction matters.
func (g *Grid) StateAt(row, col int) CellState {
	state, _ := g.Lookup(row, col)
	return state
}

// Lookup returns the state of a cell or ErrOutOfBounds.
func (g *Grid) Lookup(row, col int) (CellState, error) {
	if !g.InBound(row, col) {
		return Unvisited, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, row, col)
	}
	return g.cells[row][col], nil
}

// IsExplorable reports whether the cell is in bounds and either Unvisited
// or Target. The bounds check comes first so that neighbors computed off
// the edge of the grid are never dereferenced.
func (g *Grid) IsExplorable(row, col int) bool {
	if !g.InBound(row, col) {
		return false
	}
	state := g.cells[row][col]
	return state == Unvisited || state == Target
}

// Count returns how many cells currently hold state.
func (g *Grid) Count(state CellState) int {
	n := 0
	for _, row := range g.cells {
		for _, s := range row {
			if s == state {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a copy of the cell states.
func (g *Grid) Snapshot() [][]CellState {
	out := make([][]CellState, g.rows)
	for i, row := range g.cells {
		out[i] = append([]CellState(nil), row...)
	}
	return out
}

// String provides a textual representation of the grid. Visited cells are
// drawn as '.', dead ends as 'x' and the target as 'T'.
func (g *Grid) String() string {
	var b strings.Builder

	border := "+" + strings.Repeat("---+", g.cols) + "\n"
	b.WriteString(border)
	for _, row := range g.cells {
		b.WriteString("|")
		for _, s := range row {
			b.WriteString(" " + s.symbol() + " |")
		}
		b.WriteString("\n")
		b.WriteString(border)
	}

	return b.String()
}
