package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontier(t *testing.T) {
	f := NewFrontier(4)
	assert.True(t, f.Empty())

	_, ok := f.Pop()
	assert.False(t, ok, "popping an empty frontier")

	f.Push(CellPosition{0, 0})
	f.Push(CellPosition{0, 1})
	f.Push(CellPosition{1, 1})
	assert.Equal(t, 3, f.Len())

	top, ok := f.Peek()
	assert.True(t, ok)
	assert.Equal(t, CellPosition{1, 1}, top)
	assert.Equal(t, []CellPosition{{0, 0}, {0, 1}, {1, 1}}, f.Cells())

	for _, want := range []CellPosition{{1, 1}, {0, 1}, {0, 0}} {
		got, ok := f.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, f.Empty())
}
