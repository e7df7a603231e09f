package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoseAdvance(t *testing.T) {
	tests := []struct {
		heading Heading
		want    CellPosition
	}{
		{North, CellPosition{1, 2}},
		{East, CellPosition{2, 3}},
		{South, CellPosition{3, 2}},
		{West, CellPosition{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.heading.String(), func(t *testing.T) {
			p := NewPose(CellPosition{2, 2}, tt.heading)
			assert.Equal(t, tt.want, p.Ahead())
			p.Advance()
			assert.Equal(t, tt.want, p.Position())
			assert.Equal(t, tt.heading, p.Heading)
		})
	}
}

func TestPoseTurns(t *testing.T) {
	t.Run("Turn right cycles clockwise", func(t *testing.T) {
		p := NewPose(CellPosition{}, North)
		want := []Heading{East, South, West, North}
		for _, h := range want {
			p.TurnRight()
			assert.Equal(t, h, p.Heading)
		}
	})

	t.Run("Turn left cycles counter-clockwise", func(t *testing.T) {
		p := NewPose(CellPosition{}, North)
		want := []Heading{West, South, East, North}
		for _, h := range want {
			p.TurnLeft()
			assert.Equal(t, h, p.Heading)
		}
	})

	t.Run("Turns summing to a full circle restore heading", func(t *testing.T) {
		sequences := map[string]func(p *Pose){
			"four rights": func(p *Pose) { p.TurnRight(); p.TurnRight(); p.TurnRight(); p.TurnRight() },
			"four lefts":  func(p *Pose) { p.TurnLeft(); p.TurnLeft(); p.TurnLeft(); p.TurnLeft() },
			"two 180s":    func(p *Pose) { p.Turn180(); p.Turn180() },
			"left right":  func(p *Pose) { p.TurnLeft(); p.TurnRight() },
			"180 two rights": func(p *Pose) {
				p.Turn180()
				p.TurnRight()
				p.TurnRight()
			},
		}

		for name, turn := range sequences {
			for h := North; h <= West; h++ {
				p := NewPose(CellPosition{1, 1}, h)
				turn(&p)
				assert.Equal(t, h, p.Heading, "%s from %s", name, h)
				assert.Equal(t, CellPosition{1, 1}, p.Position())
			}
		}
	})

	t.Run("Turn180 is two rights", func(t *testing.T) {
		for h := North; h <= West; h++ {
			a := NewPose(CellPosition{}, h)
			b := NewPose(CellPosition{}, h)
			a.Turn180()
			b.TurnRight()
			b.TurnRight()
			assert.Equal(t, b.Heading, a.Heading)
		}
	})
}

func TestHeadingBetween(t *testing.T) {
	center := CellPosition{3, 3}
	for h := North; h <= West; h++ {
		got, ok := HeadingBetween(center, center.Step(h))
		require.True(t, ok)
		assert.Equal(t, h, got)
	}

	_, ok := HeadingBetween(center, CellPosition{4, 4})
	assert.False(t, ok, "diagonal cells are not adjacent")
	_, ok = HeadingBetween(center, center)
	assert.False(t, ok, "a cell is not adjacent to itself")
	_, ok = HeadingBetween(center, CellPosition{3, 5})
	assert.False(t, ok)
}

func TestRightTurnsTo(t *testing.T) {
	assert.Equal(t, 0, North.RightTurnsTo(North))
	assert.Equal(t, 1, North.RightTurnsTo(East))
	assert.Equal(t, 2, East.RightTurnsTo(West))
	assert.Equal(t, 3, North.RightTurnsTo(West))
	assert.Equal(t, 1, West.RightTurnsTo(North))
}

func TestParseHeading(t *testing.T) {
	for input, want := range map[string]Heading{"north": North, "E": East, " South ": South, "w": West} {
		got, err := ParseHeading(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseHeading("up")
	assert.ErrorIs(t, err, ErrInvalidHeading)
}

func TestPriority(t *testing.T) {
	t.Run("Parse default order", func(t *testing.T) {
		p, err := ParsePriority("left, front, right")
		require.NoError(t, err)
		assert.Equal(t, DefaultPriority, p)
		assert.Equal(t, "left,front,right", p.String())
	})

	t.Run("Parse rejects duplicates and unknown names", func(t *testing.T) {
		for _, input := range []string{"left,left,right", "left,front", "left,front,back", ""} {
			_, err := ParsePriority(input)
			assert.ErrorIs(t, err, ErrInvalidPriority, input)
		}
	})

	t.Run("All orders are distinct and valid", func(t *testing.T) {
		seen := map[Priority]bool{}
		for _, p := range AllPriorities() {
			require.NoError(t, p.Validate())
			seen[p] = true
		}
		assert.Len(t, seen, 6)
	})

	t.Run("Relative directions map to headings", func(t *testing.T) {
		assert.Equal(t, North, RelLeft.Absolute(East))
		assert.Equal(t, East, RelFront.Absolute(East))
		assert.Equal(t, South, RelRight.Absolute(East))
		assert.Equal(t, West, RelLeft.Absolute(North))
	})
}
