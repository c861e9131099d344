package decks

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
)

// DeckPatch is a partial deck update. Nil fields are left unchanged.
// A non-nil CardIDs changes the composition and re-validates it;
// metadata-only patches skip composition checks entirely.
type DeckPatch struct {
	Name        *string
	Description *string
	Favorite    *bool
	CardIDs     []int64
}

// Service manages deck lifecycle on top of the validator.
type Service struct {
	decks     repositories.DeckRepository
	cards     repositories.CardRepository
	userCards repositories.UserCardRepository

	newID func() int64
}

func NewService(decks repositories.DeckRepository, cards repositories.CardRepository, userCards repositories.UserCardRepository) *Service {
	return &Service{
		decks:     decks,
		cards:     cards,
		userCards: userCards,
		newID:     func() int64 { return int64(snowflake.New(time.Now())) },
	}
}

// Create builds a new deck after validating its composition and
// checking that the user owns enough copies of every card used.
func (s *Service) Create(ctx context.Context, userID, name, description string, cardIDs []int64) (*models.Deck, error) {
	if err := Validate(cardIDs); err != nil {
		return nil, err
	}
	if err := s.checkOwnership(ctx, userID, cardIDs); err != nil {
		return nil, err
	}

	deck := &models.Deck{
		ID:          s.newID(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CardIDs:     append([]int64(nil), cardIDs...),
		Active:      true,
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, err
	}

	slog.Debug("deck created",
		slog.String("type", "decks"),
		slog.String("user_id", userID),
		slog.Int64("deck_id", deck.ID),
		slog.Int("cards", len(deck.CardIDs)),
	)
	return deck, nil
}

// Get returns a deck owned by the user. Decks of other users are
// indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, userID string, deckID int64) (*models.Deck, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, repositories.ErrDeckNotFound
	}
	return deck, nil
}

// List returns the user's active decks, favorites first, then newest.
func (s *Service) List(ctx context.Context, userID string) ([]*models.Deck, error) {
	return s.decks.GetByUserID(ctx, userID)
}

// Update applies a partial update. The write is guarded by the
// updated_at the deck was read at; a concurrent change surfaces as
// ErrDeckConflict for the caller to retry.
func (s *Service) Update(ctx context.Context, userID string, deckID int64, patch DeckPatch) (*models.Deck, error) {
	deck, err := s.Get(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}
	readAt := deck.UpdatedAt

	if patch.Name != nil {
		deck.Name = *patch.Name
	}
	if patch.Description != nil {
		deck.Description = *patch.Description
	}
	if patch.Favorite != nil {
		deck.Favorite = *patch.Favorite
	}
	if patch.CardIDs != nil {
		if err := Validate(patch.CardIDs); err != nil {
			return nil, err
		}
		if err := s.checkOwnership(ctx, userID, patch.CardIDs); err != nil {
			return nil, err
		}
		deck.CardIDs = append([]int64(nil), patch.CardIDs...)
	}

	if err := s.decks.Update(ctx, deck, readAt); err != nil {
		return nil, err
	}
	return deck, nil
}

// Delete removes the deck outright. Battle records keep their deck id
// and tolerate the dangling reference.
func (s *Service) Delete(ctx context.Context, userID string, deckID int64) error {
	if _, err := s.Get(ctx, userID, deckID); err != nil {
		return err
	}
	return s.decks.Delete(ctx, deckID)
}

// checkOwnership verifies every card in the composition exists and the
// user holds at least as many copies as the deck uses.
func (s *Service) checkOwnership(ctx context.Context, userID string, cardIDs []int64) error {
	copies := make(map[int64]int64, len(cardIDs))
	for _, cardID := range cardIDs {
		copies[cardID]++
	}
	for cardID, used := range copies {
		if _, err := s.cards.GetByID(ctx, cardID); err != nil {
			return err
		}
		owned, err := s.userCards.QuantityOf(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if owned < used {
			return repositories.ErrInsufficientQuantity
		}
	}
	return nil
}
