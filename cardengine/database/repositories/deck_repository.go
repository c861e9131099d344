package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/uptrace/bun"
)

type DeckRepository interface {
	Create(ctx context.Context, deck *models.Deck) error
	GetByID(ctx context.Context, id int64) (*models.Deck, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Deck, error)
	Update(ctx context.Context, deck *models.Deck, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type deckRepository struct {
	db *bun.DB
}

func NewDeckRepository(db *bun.DB) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	deck.CreatedAt = time.Now()
	deck.UpdatedAt = deck.CreatedAt
	if _, err := r.db.NewInsert().Model(deck).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	return nil
}

func (r *deckRepository) GetByID(ctx context.Context, id int64) (*models.Deck, error) {
	deck := new(models.Deck)
	err := r.db.NewSelect().
		Model(deck).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

func (r *deckRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Deck, error) {
	var decks []*models.Deck
	err := r.db.NewSelect().
		Model(&decks).
		Where("user_id = ? AND active = TRUE", userID).
		Order("favorite DESC").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// Update writes the deck back guarded by the updated_at it was read at.
// A concurrent writer bumps updated_at first, making this a no-op that
// surfaces as ErrDeckConflict so the caller can re-read and re-validate.
func (r *deckRepository) Update(ctx context.Context, deck *models.Deck, expectedUpdatedAt time.Time) error {
	deck.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(deck).
		Column("name", "description", "card_ids", "favorite", "active", "updated_at").
		Where("id = ? AND updated_at = ?", deck.ID, expectedUpdatedAt).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		exists, err := r.db.NewSelect().
			Model((*models.Deck)(nil)).
			Where("id = ?", deck.ID).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check deck existence: %w", err)
		}
		if !exists {
			return ErrDeckNotFound
		}
		return ErrDeckConflict
	}
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.Deck)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrDeckNotFound
	}
	return nil
}
