package maze

import (
	"errors"
	"fmt"
	"strings"
)

// Heading is one of the four cardinal facing directions.
// The numeric order matters: turning right adds one modulo four.
type Heading uint8

const (
	North Heading = iota
	East
	South
	West

	headingCount = 4
)

var (
	// Directions maps each heading to its row/col delta.
	Directions = map[Heading]CellPosition{
		North: {Row: -1, Col: 0},
		East:  {Row: 0, Col: 1},
		South: {Row: 1, Col: 0},
		West:  {Row: 0, Col: -1},
	}

	headingNames = [headingCount]string{"North", "East", "South", "West"}

	ErrInvalidHeading  = errors.New("invalid heading")
	ErrInvalidPriority = errors.New("invalid priority order")
)

// ParseHeading accepts a heading name (case insensitive) or its first letter.
func ParseHeading(s string) (Heading, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for i, name := range headingNames {
		lower := strings.ToLower(name)
		if s == lower || s == lower[:1] {
			return Heading(i), nil
		}
	}
	return North, fmt.Errorf("%w: %q", ErrInvalidHeading, s)
}

// Valid reports whether h is one of the four cardinal values.
func (h Heading) Valid() bool {
	return h < headingCount
}

// Left returns the heading after a 90 degree counter-clockwise turn.
func (h Heading) Left() Heading {
	return (h + headingCount - 1) % headingCount
}

// Right returns the heading after a 90 degree clockwise turn.
func (h Heading) Right() Heading {
	return (h + 1) % headingCount
}

// Reverse returns the opposite heading.
func (h Heading) Reverse() Heading {
	return (h + 2) % headingCount
}

// RightTurnsTo returns how many clockwise quarter turns bring h to other.
func (h Heading) RightTurnsTo(other Heading) int {
	return int((other + headingCount - h) % headingCount)
}

// Delta returns the row/col change of one step in direction h.
func (h Heading) Delta() CellPosition {
	return Directions[h]
}

func (h Heading) String() string {
	if !h.Valid() {
		return fmt.Sprintf("Heading(%d)", uint8(h))
	}
	return headingNames[h]
}

// HeadingBetween returns the heading that points from one cell to a
// 4-adjacent cell. The boolean is false when the cells are not adjacent.
func HeadingBetween(from, to CellPosition) (Heading, bool) {
	for h := North; h < headingCount; h++ {
		if from.Step(h) == to {
			return h, true
		}
	}
	return North, false
}

// Relative is a direction expressed relative to the robot's heading.
type Relative uint8

const (
	RelLeft Relative = iota
	RelFront
	RelRight
)

// Absolute converts r into a cardinal heading for a robot facing h.
func (r Relative) Absolute(h Heading) Heading {
	switch r {
	case RelLeft:
		return h.Left()
	case RelRight:
		return h.Right()
	default:
		return h
	}
}

func (r Relative) String() string {
	switch r {
	case RelLeft:
		return "left"
	case RelFront:
		return "front"
	case RelRight:
		return "right"
	default:
		return fmt.Sprintf("Relative(%d)", uint8(r))
	}
}

// Priority is the fixed order in which the navigator tries the three
// forward-relative directions. Any total order explores correctly; the
// order only changes which branch is taken first.
type Priority [3]Relative

// DefaultPriority tries left, then front, then right.
var DefaultPriority = Priority{RelLeft, RelFront, RelRight}

// ParsePriority reads a comma separated order such as "left,front,right".
func ParsePriority(s string) (Priority, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(Priority{}) {
		return Priority{}, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}

	var p Priority
	for i, part := range parts {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "left", "l":
			p[i] = RelLeft
		case "front", "f", "forward":
			p[i] = RelFront
		case "right", "r":
			p[i] = RelRight
		default:
			return Priority{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidPriority, part)
		}
	}

	if err := p.Validate(); err != nil {
		return Priority{}, err
	}
	return p, nil
}

// Validate checks that every relative direction appears exactly once.
func (p Priority) Validate() error {
	var seen [3]bool
	for _, r := range p {
		if r > RelRight || seen[r] {
			return fmt.Errorf("%w: %s", ErrInvalidPriority, p)
		}
		seen[r] = true
	}
	return nil
}

func (p Priority) String() string {
	return fmt.Sprintf("%s,%s,%s", p[0], p[1], p[2])
}

// AllPriorities returns the six total orders over left, front and right.
func AllPriorities() []Priority {
	return []Priority{
		{RelLeft, RelFront, RelRight},
		{RelLeft, RelRight, RelFront},
		{RelFront, RelLeft, RelRight},
		{RelFront, RelRight, RelLeft},
		{RelRight, RelLeft, RelFront},
		{RelRight, RelFront, RelLeft},
	}
}
