package maze

import "fmt"

// Pose is where the robot believes it is and which way it is facing.
// It is updated only after a motion has completed; there is no
// intermediate state between motions.
type Pose struct {
	Row     int
	Col     int
	Heading Heading
}

// NewPose returns a pose at pos facing h.
func NewPose(pos CellPosition, h Heading) Pose {
	return Pose{Row: pos.Row, Col: pos.Col, Heading: h}
}

// Position returns the cell the pose occupies.
func (p *Pose) Position() CellPosition {
	return CellPosition{Row: p.Row, Col: p.Col}
}

// Ahead returns the cell one step in the current heading.
func (p *Pose) Ahead() CellPosition {
	return p.Position().Step(p.Heading)
}

// Advance moves one cell in the current heading. It does not check bounds;
// callers must verify the destination first.
func (p *Pose) Advance() {
	d := p.Heading.Delta()
	p.Row += d.Row
	p.Col += d.Col
}

// TurnLeft rotates the heading 90 degrees counter-clockwise.
func (p *Pose) TurnLeft() {
	p.Heading = p.Heading.Left()
}

// TurnRight rotates the heading 90 degrees clockwise.
func (p *Pose) TurnRight() {
	p.Heading = p.Heading.Right()
}

// Turn180 reverses the heading.
func (p *Pose) Turn180() {
	p.Heading = p.Heading.Reverse()
}

func (p Pose) String() string {
	return fmt.Sprintf("(%d,%d) facing %s", p.Row, p.Col, p.Heading)
}
