package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion_Contains(t *testing.T) {
	check := Region{A: 0, B: 4}

	assert.True(t, check.Contains(Region{A: 0, B: 4}))
	assert.True(t, check.Contains(Region{A: 1, B: 3}))
	assert.True(t, check.Contains(Region{A: 4, B: 4}))
	assert.False(t, check.Contains(NewRegion(5, 3)))
	assert.False(t, check.Contains(Region{A: 3, B: 5}))
}

func TestRegion_Reversed(t *testing.T) {
	r := Region{A: 7, B: 3}
	assert.Equal(t, 3, r.Begin())
	assert.Equal(t, 7, r.End())
	assert.Equal(t, 4, r.Len())
	assert.False(t, r.Empty())
}

func TestRegion_Shift(t *testing.T) {
	assert.Equal(t, Region{A: 12, B: 16}, NewRegion(2, 4).Shift(10))
}

func TestSet_Order(t *testing.T) {
	s := NewSet()
	s.Add(&Problem{Key: "0"})
	s.Add(&Problem{Key: "1", OriginalContent: "teh"})

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "teh", s.Items()[1].OriginalContent)
}

func TestSet_Nil(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Items())
}
