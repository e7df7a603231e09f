package maze

// Frontier is the stack of cells the robot has left while exploring.
// Popping returns the most recent one, which is always 4-adjacent to the
// robot's current cell as long as entries are pushed only after a
// confirmed forward move out of that cell.
type Frontier struct {
	cells []CellPosition
}

// NewFrontier returns an empty stack with room for capacity entries.
func NewFrontier(capacity int) *Frontier {
	return &Frontier{cells: make([]CellPosition, 0, capacity)}
}

// Push adds pos on top of the stack.
func (f *Frontier) Push(pos CellPosition) {
	f.cells = append(f.cells, pos)
}

// Pop removes and returns the top entry.
func (f *Frontier) Pop() (CellPosition, bool) {
	if len(f.cells) == 0 {
		return CellPosition{}, false
	}
	last := len(f.cells) - 1
	pos := f.cells[last]
	f.cells = f.cells[:last]
	return pos, true
}

// Peek returns the top entry without removing it.
func (f *Frontier) Peek() (CellPosition, bool) {
	if len(f.cells) == 0 {
		return CellPosition{}, false
	}
	return f.cells[len(f.cells)-1], true
}

// Len returns the number of entries.
func (f *Frontier) Len() int { return len(f.cells) }

// Empty reports whether there is nothing left to backtrack to.
func (f *Frontier) Empty() bool { return len(f.cells) == 0 }

// Cells returns a copy of the stack, bottom first.
func (f *Frontier) Cells() []CellPosition {
	return append([]CellPosition(nil), f.cells...)
}
