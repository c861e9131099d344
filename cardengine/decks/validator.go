package decks

import (
	"errors"
	"fmt"
)

// Deck composition limits. A legal deck has between MinDeckSize and
// MaxDeckSize cards and at most MaxCopiesPerCard copies of any card.
const (
	MinDeckSize      = 5
	MaxDeckSize      = 15
	MaxCopiesPerCard = 2
)

var (
	ErrTooFewCards  = errors.New("deck has too few cards")
	ErrTooManyCards = errors.New("deck has too many cards")
)

// TooManyCopiesError identifies which card exceeded the copy limit.
type TooManyCopiesError struct {
	CardID int64
	Copies int
}

func (e TooManyCopiesError) Error() string {
	return fmt.Sprintf("card %d appears %d times, at most %d copies allowed", e.CardID, e.Copies, MaxCopiesPerCard)
}

// Validate checks a deck composition against the size and copy limits.
// It returns nil exactly when the composition is legal.
func Validate(cardIDs []int64) error {
	if len(cardIDs) < MinDeckSize {
		return ErrTooFewCards
	}
	if len(cardIDs) > MaxDeckSize {
		return ErrTooManyCards
	}

	copies := make(map[int64]int, len(cardIDs))
	for _, cardID := range cardIDs {
		copies[cardID]++
		if copies[cardID] > MaxCopiesPerCard {
			return TooManyCopiesError{CardID: cardID, Copies: copies[cardID]}
		}
	}
	return nil
}
