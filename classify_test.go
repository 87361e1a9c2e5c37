package lmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyAbab(t *testing.T) {
	// "abab\0": positions 0..4, classic SA-IS textbook example.
	s := byteSequence("abab\x00")
	tt := classify(s)
	want := []bool{false, true, false, true, false} // S,L,S,L,S
	for i, w := range want {
		assert.Equalf(t, w, isL(tt, i), "position %d", i)
	}
}

func TestClassifySentinelIsAlwaysS(t *testing.T) {
	s := byteSequence("x\x00")
	tt := classify(s)
	assert.True(t, isS(tt, 1))
}

func TestClassifyEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { classify(byteSequence{}) })
}

func TestIsLMS(t *testing.T) {
	s := byteSequence("abab\x00")
	tt := classify(s)
	require.False(t, isLMS(tt, 0), "position 0 is never LMS")
	assert.False(t, isLMS(tt, 1))
	assert.True(t, isLMS(tt, 2))
	assert.False(t, isLMS(tt, 3))
	assert.True(t, isLMS(tt, 4))
}

func TestLmsPositions(t *testing.T) {
	s := byteSequence("abab\x00")
	tt := classify(s)
	assert.Equal(t, []int{2, 4}, lmsPositions(tt))
}

func TestNextLMS(t *testing.T) {
	s := byteSequence("abab\x00")
	tt := classify(s)
	next, ok := nextLMS(tt, 2)
	require.True(t, ok)
	assert.Equal(t, 4, next)

	_, ok = nextLMS(tt, 4)
	assert.False(t, ok)
}

func TestClassifyAllEqual(t *testing.T) {
	s := byteSequence("aaaa\x00")
	tt := classify(s)
	// every run of equal symbols inherits its successor's type; only the
	// sentinel is S, everything before it is L since 'a' > 0, so the
	// sentinel is the only LMS position.
	for i := 0; i < 4; i++ {
		assert.Truef(t, isL(tt, i), "position %d", i)
	}
	assert.True(t, isS(tt, 4))
	assert.Equal(t, []int{4}, lmsPositions(tt))
}
