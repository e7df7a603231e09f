package maze

import "fmt"

// CellState records what the navigator knows about a single grid cell.
type CellState uint8

const (
	Unvisited CellState = iota // Unvisited cells have never been occupied.
	Visited                    // Visited cells have been entered at least once.
	DeadEnd                    // DeadEnd cells have no unexplored, unblocked neighbor left.
	Target                     // Target is the exit cell the robot is looking for.
)

// String returns the state name.
func (s CellState) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Visited:
		return "visited"
	case DeadEnd:
		return "dead-end"
	case Target:
		return "target"
	default:
		return fmt.Sprintf("CellState(%d)", uint8(s))
	}
}

// symbol is the single character used when rendering a grid.
func (s CellState) symbol() string {
	switch s {
	case Visited:
		return "."
	case DeadEnd:
		return "x"
	case Target:
		return "T"
	default:
		return " "
	}
}

// CellPosition represents the position of a cell in the maze grid.
type CellPosition struct {
	Row int // Row index of the cell
	Col int // Column index of the cell
}

// Step returns the neighboring position one cell away in direction h.
func (cp CellPosition) Step(h Heading) CellPosition {
	d := h.Delta()
	return CellPosition{Row: cp.Row + d.Row, Col: cp.Col + d.Col}
}

// String formats the position as (row,col).
func (cp CellPosition) String() string {
	return fmt.Sprintf("(%d,%d)", cp.Row, cp.Col)
}
