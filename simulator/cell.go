package simulator

import "github.com/beka-birhanu/mazebot/maze"

// Cell represents a single cell of the simulated world and the walls
// around it.
type Cell struct {
	NorthWall bool // NorthWall indicates whether there is a wall on the north side of the cell.
	SouthWall bool // SouthWall indicates whether there is a wall on the south side of the cell.
	EastWall  bool // EastWall indicates whether there is a wall on the east side of the cell.
	WestWall  bool // WestWall indicates whether there is a wall on the west side of the cell.
}

// HasWall reports whether the side of the cell facing h is walled.
func (c *Cell) HasWall(h maze.Heading) bool {
	switch h {
	case maze.North:
		return c.NorthWall
	case maze.South:
		return c.SouthWall
	case maze.East:
		return c.EastWall
	case maze.West:
		return c.WestWall
	default:
		return true
	}
}

// SetWall sets the presence of a wall on the side of the cell facing h.
func (c *Cell) SetWall(h maze.Heading, hasWall bool) {
	switch h {
	case maze.North:
		c.NorthWall = hasWall
	case maze.South:
		c.SouthWall = hasWall
	case maze.East:
		c.EastWall = hasWall
	case maze.West:
		c.WestWall = hasWall
	}
}
