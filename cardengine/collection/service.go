package collection

import (
	"context"
	"fmt"
	"math"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/economy/utils"
	"github.com/uptrace/bun"
)

// Progress summarizes how much of the active catalog a user owns.
type Progress struct {
	Owned      int `json:"owned"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// OwnedCard pairs a catalog card with the copies a user holds.
type OwnedCard struct {
	Card   *models.Card `json:"card"`
	Amount int64        `json:"amount"`
}

// Service is the collection ledger: per-user card quantities, credits,
// debits and catalog completion.
type Service struct {
	cards     repositories.CardRepository
	userCards repositories.UserCardRepository
	tx        utils.TxRunner
}

func NewService(cards repositories.CardRepository, userCards repositories.UserCardRepository, tx utils.TxRunner) *Service {
	return &Service{cards: cards, userCards: userCards, tx: tx}
}

// QuantityOf returns how many copies of a card the user holds. Zero
// for a card they never obtained.
func (s *Service) QuantityOf(ctx context.Context, userID string, cardID int64) (int64, error) {
	return s.userCards.QuantityOf(ctx, userID, cardID)
}

// TotalCardCount is the sum of all copies across the collection.
func (s *Service) TotalCardCount(ctx context.Context, userID string) (int64, error) {
	return s.userCards.TotalCount(ctx, userID)
}

// UniqueCardCount is the number of distinct card ids the user holds.
func (s *Service) UniqueCardCount(ctx context.Context, userID string) (int, error) {
	return s.userCards.UniqueCount(ctx, userID)
}

// ListOwned returns the user's collection joined with catalog entries,
// newest acquisitions first. Entries whose card was removed from the
// catalog entirely are skipped.
func (s *Service) ListOwned(ctx context.Context, userID string) ([]*OwnedCard, error) {
	userCards, err := s.userCards.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(userCards) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(userCards))
	for i, uc := range userCards {
		ids[i] = uc.CardID
	}
	cards, err := s.cards.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}

	owned := make([]*OwnedCard, 0, len(userCards))
	for _, uc := range userCards {
		card, ok := byID[uc.CardID]
		if !ok {
			continue
		}
		owned = append(owned, &OwnedCard{Card: card, Amount: uc.Amount})
	}
	return owned, nil
}

// Progress computes catalog completion over the active catalog only.
// Retired cards neither count toward the total nor toward owned, so
// the percentage stays within 0..100 as the catalog evolves.
func (s *Service) Progress(ctx context.Context, userID string) (*Progress, error) {
	active, err := s.cards.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return &Progress{}, nil
	}

	userCards, err := s.userCards.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activeIDs := make(map[int64]bool, len(active))
	for _, card := range active {
		activeIDs[card.ID] = true
	}
	owned := 0
	for _, uc := range userCards {
		if uc.Amount > 0 && activeIDs[uc.CardID] {
			owned++
		}
	}

	return &Progress{
		Owned:      owned,
		Total:      len(active),
		Percentage: int(math.Round(float64(owned) / float64(len(active)) * 100)),
	}, nil
}

// Credit adds copies of a card to the collection. The card must exist
// in the catalog.
func (s *Service) Credit(ctx context.Context, userID string, cardID int64, amount int64) error {
	if amount < 1 {
		return fmt.Errorf("credit amount must be >= 1, got %d", amount)
	}
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, utils.StandardTransactionOptions(), func(ctx context.Context, tx bun.IDB) error {
		return s.userCards.AddTx(ctx, tx, userID, cardID, amount)
	})
}

// Debit removes copies of a card from the collection. Removing more
// copies than held fails with ErrInsufficientQuantity and changes
// nothing.
func (s *Service) Debit(ctx context.Context, userID string, cardID int64, amount int64) error {
	if amount < 1 {
		return fmt.Errorf("debit amount must be >= 1, got %d", amount)
	}

	return s.tx.WithTransaction(ctx, utils.StandardTransactionOptions(), func(ctx context.Context, tx bun.IDB) error {
		return s.userCards.RemoveTx(ctx, tx, userID, cardID, amount)
	})
}
