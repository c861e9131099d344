package decks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestValidateSizeBounds(t *testing.T) {
	assert.ErrorIs(t, Validate(ids(4)), ErrTooFewCards)
	assert.NoError(t, Validate(ids(5)))
	assert.NoError(t, Validate(ids(15)))
	assert.ErrorIs(t, Validate(ids(16)), ErrTooManyCards)
	assert.ErrorIs(t, Validate(nil), ErrTooFewCards)
}

func TestValidateCopyLimit(t *testing.T) {
	// two copies of a card is legal
	assert.NoError(t, Validate([]int64{1, 1, 2, 3, 4}))

	// a third copy is not, and the error names the offender
	err := Validate([]int64{7, 7, 7, 2, 3})
	var tooMany TooManyCopiesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, int64(7), tooMany.CardID)
}

func TestValidateLegalIffWithinAllLimits(t *testing.T) {
	// 15 cards built from 2+2+2+2+2+2+2+1 copies sits exactly on every
	// limit at once and must pass.
	deck := []int64{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8}
	assert.NoError(t, Validate(deck))

	// swapping the single for a third copy flips exactly one rule
	deck[14] = 7
	var tooMany TooManyCopiesError
	assert.ErrorAs(t, Validate(deck), &tooMany)
}
