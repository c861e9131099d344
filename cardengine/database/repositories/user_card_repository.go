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

type UserCardRepository interface {
	GetUserCard(ctx context.Context, userID string, cardID int64) (*models.UserCard, error)
	GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error)
	QuantityOf(ctx context.Context, userID string, cardID int64) (int64, error)
	TotalCount(ctx context.Context, userID string) (int64, error)
	UniqueCount(ctx context.Context, userID string) (int, error)
	AddTx(ctx context.Context, tx bun.IDB, userID string, cardID int64, amount int64) error
	RemoveTx(ctx context.Context, tx bun.IDB, userID string, cardID int64, amount int64) error
}

type userCardRepository struct {
	db *bun.DB
}

func NewUserCardRepository(db *bun.DB) UserCardRepository {
	return &userCardRepository{db: db}
}

func (r *userCardRepository) GetUserCard(ctx context.Context, userID string, cardID int64) (*models.UserCard, error) {
	userCard := new(models.UserCard)
	err := r.db.NewSelect().
		Model(userCard).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user card: %w", err)
	}
	return userCard, nil
}

func (r *userCardRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var userCards []*models.UserCard
	err := r.db.NewSelect().
		Model(&userCards).
		Where("user_id = ?", userID).
		Order("obtained DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user cards: %w", err)
	}
	return userCards, nil
}

func (r *userCardRepository) QuantityOf(ctx context.Context, userID string, cardID int64) (int64, error) {
	userCard, err := r.GetUserCard(ctx, userID, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return userCard.Amount, nil
}

func (r *userCardRepository) TotalCount(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.NewSelect().
		Model((*models.UserCard)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum user cards: %w", err)
	}
	return total, nil
}

func (r *userCardRepository) UniqueCount(ctx context.Context, userID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.UserCard)(nil)).
		Where("user_id = ? AND amount > 0", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unique user cards: %w", err)
	}
	return count, nil
}

// AddTx credits copies inside the caller's transaction with UPSERT
// logic: an atomic increment when the row exists, an insert otherwise.
func (r *userCardRepository) AddTx(ctx context.Context, tx bun.IDB, userID string, cardID int64, amount int64) error {
	if amount < 1 {
		return fmt.Errorf("credit amount must be >= 1, got %d", amount)
	}

	res, err := tx.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("amount = amount + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update card amount: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		_, err = tx.NewInsert().
			Model(&models.UserCard{
				UserID:    userID,
				CardID:    cardID,
				Amount:    amount,
				Obtained:  time.Now(),
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to add new card: %w", err)
		}
	}

	return nil
}

// RemoveTx debits copies inside the caller's transaction. The row is
// locked before the check so that concurrent debits on the same
// (user, card) pair serialize. A row reaching exactly zero is deleted.
func (r *userCardRepository) RemoveTx(ctx context.Context, tx bun.IDB, userID string, cardID int64, amount int64) error {
	if amount < 1 {
		return fmt.Errorf("debit amount must be >= 1, got %d", amount)
	}

	var userCard models.UserCard
	err := tx.NewSelect().
		Model(&userCard).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInsufficientQuantity
		}
		return fmt.Errorf("failed to lock user card: %w", err)
	}

	if userCard.Amount < amount {
		return ErrInsufficientQuantity
	}

	if userCard.Amount == amount {
		res, err := tx.NewDelete().
			Model((*models.UserCard)(nil)).
			Where("user_id = ? AND card_id = ?", userID, cardID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete user card: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrInsufficientQuantity
		}
		return nil
	}

	res, err := tx.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("amount = amount - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND card_id = ? AND amount >= ?", userID, cardID, amount).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update card amount: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrInsufficientQuantity
	}
	return nil
}
