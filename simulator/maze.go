/*
Package simulator provides a walled maze world and a simulated robot that
implements the navigator's Perception and Actuator interfaces, so runs can
be exercised without hardware.

Mazes are either open (only the outer boundary is walled) or generated
with Wilson's algorithm, which yields a perfect maze: every cell is
reachable from every other cell by exactly one path.
*/
package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/beka-birhanu/mazebot/maze"
)

const (
	maxMazeDimension = 64
)

var ErrInvalidDimensions = errors.New("invalid maze dimensions")

// WallMaze represents a rectangular maze of walled cells.
type WallMaze struct {
	Width  int       // Width of the maze (number of columns)
	Height int       // Height of the maze (number of rows)
	Grid   [][]*Cell // 2D grid of cells forming the maze
}

// move is a step between two adjacent cells.
type move struct {
	From      maze.CellPosition
	To        maze.CellPosition
	Direction maze.Heading
}

func newWalled(width, height int, walled bool) (*WallMaze, error) {
	if min(width, height) <= 0 || max(width, height) > maxMazeDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, height, width)
	}

	grid := make([][]*Cell, height)
	for i := range grid {
		grid[i] = make([]*Cell, width)
		for j := range grid[i] {
			grid[i][j] = &Cell{
				NorthWall: walled || i == 0,
				SouthWall: walled || i == height-1,
				EastWall:  walled || j == width-1,
				WestWall:  walled || j == 0,
			}
		}
	}

	return &WallMaze{Width: width, Height: height, Grid: grid}, nil
}

// NewOpenMaze returns a maze whose only walls are the outer boundary.
func NewOpenMaze(width, height int) (*WallMaze, error) {
	return newWalled(width, height, false)
}

// NewWallMaze generates a perfect maze of the given dimensions.
func NewWallMaze(width, height int, rng *rand.Rand) (*WallMaze, error) {
	m, err := newWalled(width, height, true)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	m.generateMaze(rng)
	return m, nil
}

// InBound reports whether pos lies inside the maze.
func (m *WallMaze) InBound(pos maze.CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.Height && pos.Col >= 0 && pos.Col < m.Width
}

// HasWall reports whether leaving pos in direction h is blocked. Leaving
// the maze is always blocked.
func (m *WallMaze) HasWall(pos maze.CellPosition, h maze.Heading) bool {
	if !m.InBound(pos) || !m.InBound(pos.Step(h)) {
		return true
	}
	return m.Grid[pos.Row][pos.Col].HasWall(h)
}

// AddWall places a wall between pos and its neighbor in direction h.
func (m *WallMaze) AddWall(pos maze.CellPosition, h maze.Heading) {
	m.setWall(pos, h, true)
}

// RemoveWall opens the passage between pos and its neighbor in direction h.
func (m *WallMaze) RemoveWall(pos maze.CellPosition, h maze.Heading) {
	m.setWall(pos, h, false)
}

// Block walls pos in on every side.
func (m *WallMaze) Block(pos maze.CellPosition) {
	for h := maze.North; h <= maze.West; h++ {
		m.AddWall(pos, h)
	}
}

func (m *WallMaze) setWall(pos maze.CellPosition, h maze.Heading, wall bool) {
	next := pos.Step(h)
	if !m.InBound(pos) || !m.InBound(next) {
		return
	}
	m.Grid[pos.Row][pos.Col].SetWall(h, wall)
	m.Grid[next.Row][next.Col].SetWall(h.Reverse(), wall)
}

// Reachable reports whether to can be reached from from through open
// passages.
func (m *WallMaze) Reachable(from, to maze.CellPosition) bool {
	if !m.InBound(from) || !m.InBound(to) {
		return false
	}

	seen := map[maze.CellPosition]bool{from: true}
	queue := []maze.CellPosition{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			return true
		}
		for h := maze.North; h <= maze.West; h++ {
			next := cur.Step(h)
			if m.HasWall(cur, h) || seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// neighbors finds all in-bound moves from a given cell position.
func (m *WallMaze) neighbors(pos maze.CellPosition) []move {
	var result []move
	for h := maze.North; h <= maze.West; h++ {
		next := pos.Step(h)
		if m.InBound(next) {
			result = append(result, move{From: pos, To: next, Direction: h})
		}
	}
	return result
}

func (m *WallMaze) randomCellPosition(rng *rand.Rand) maze.CellPosition {
	return maze.CellPosition{Row: rng.Intn(m.Height), Col: rng.Intn(m.Width)}
}

// randomUnvisitedCellPosition selects a random position that is not yet
// part of the maze.
func (m *WallMaze) randomUnvisitedCellPosition(rng *rand.Rand, visited map[maze.CellPosition]struct{}) maze.CellPosition {
	for {
		pos := m.randomCellPosition(rng)
		if _, included := visited[pos]; !included {
			return pos
		}
	}
}

// randomWalk walks from an unvisited cell until it hits the maze. Only the
// last exit of each cell is kept, which erases loops.
func (m *WallMaze) randomWalk(rng *rand.Rand, visited map[maze.CellPosition]struct{}) (maze.CellPosition, map[maze.CellPosition]move) {
	start := m.randomUnvisitedCellPosition(rng, visited)
	visits := make(map[maze.CellPosition]move)
	cell := start

	for {
		neighbors := m.neighbors(cell)
		next := neighbors[rng.Intn(len(neighbors))]
		visits[cell] = next
		if _, included := visited[next.To]; included {
			break
		}
		cell = next.To
	}

	return start, visits
}

// generateMaze carves passages using Wilson's algorithm.
func (m *WallMaze) generateMaze(rng *rand.Rand) {
	visited := map[maze.CellPosition]struct{}{m.randomCellPosition(rng): {}}

	for len(visited) < m.Width*m.Height {
		cell, walk := m.randomWalk(rng, visited)
		for {
			if _, done := visited[cell]; done {
				break
			}
			mv := walk[cell]
			m.RemoveWall(mv.From, mv.Direction)
			visited[cell] = struct{}{}
			cell = mv.To
		}
	}
}

// String provides a textual representation of the maze.
func (m *WallMaze) String() string {
	var b strings.Builder

	// Top boundary
	b.WriteString("+" + strings.Repeat("---+", m.Width) + "\n")

	for row := 0; row < m.Height; row++ {
		cellRow := "|"
		wallRow := "+"
		for col := 0; col < m.Width; col++ {
			cell := m.Grid[row][col]
			if cell.EastWall {
				cellRow += "   |"
			} else {
				cellRow += "    "
			}
			if cell.SouthWall {
				wallRow += "---+"
			} else {
				wallRow += "   +"
			}
		}
		b.WriteString(cellRow + "\n")
		b.WriteString(wallRow + "\n")
	}

	return b.String()
}
