package battle

import (
	"context"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
)

// Service records battle outcomes and serves win/loss aggregates.
// Battles themselves are resolved client-side; this is bookkeeping.
type Service struct {
	battles repositories.BattleRepository
	decks   repositories.DeckRepository
}

func NewService(battles repositories.BattleRepository, decks repositories.DeckRepository) *Service {
	return &Service{battles: battles, decks: decks}
}

// Record stores one finished battle. When a deck id is given it must
// reference a deck the user owns at record time; the reference is
// allowed to dangle later if the deck is deleted.
func (s *Service) Record(ctx context.Context, userID, opponentID string, deckID *int64, won bool) (*models.BattleRecord, error) {
	if deckID != nil {
		deck, err := s.decks.GetByID(ctx, *deckID)
		if err != nil {
			return nil, err
		}
		if deck.UserID != userID {
			return nil, repositories.ErrDeckNotFound
		}
	}

	record := &models.BattleRecord{
		UserID:     userID,
		OpponentID: opponentID,
		DeckID:     deckID,
		Won:        won,
	}
	if err := s.battles.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Stats returns the user's win/loss aggregate. A user with no battles
// gets zeroes, not an error.
func (s *Service) Stats(ctx context.Context, userID string) (*models.BattleStats, error) {
	return s.battles.StatsFor(ctx, userID)
}

// Leaderboard returns the top users by wins.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*models.BattleStats, error) {
	return s.battles.Leaderboard(ctx, limit)
}
