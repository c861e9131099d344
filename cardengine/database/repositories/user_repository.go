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

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByAccountID(ctx context.Context, accountID string) (*models.User, error)
	GetXP(ctx context.Context, accountID string) (int64, error)
	GrantXP(ctx context.Context, accountID string, amount int64) error
	SpendXPTx(ctx context.Context, tx bun.IDB, accountID string, amount int64) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByAccountID(ctx context.Context, accountID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("account_id = ?", accountID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetXP(ctx context.Context, accountID string) (int64, error) {
	user, err := r.GetByAccountID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return user.XP, nil
}

// GrantXP credits XP with a single atomic increment.
func (r *userRepository) GrantXP(ctx context.Context, accountID string, amount int64) error {
	res, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("xp = xp + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("account_id = ?", accountID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant xp: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SpendXPTx debits XP inside the caller's transaction. The balance row
// is locked first so that concurrent spends on the same account
// serialize instead of racing the affordability check.
func (r *userRepository) SpendXPTx(ctx context.Context, tx bun.IDB, accountID string, amount int64) error {
	if amount == 0 {
		return nil
	}

	var user models.User
	err := tx.NewSelect().
		Model(&user).
		Column("id", "xp").
		Where("account_id = ?", accountID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user balance: %w", err)
	}

	if user.XP < amount {
		return ErrInsufficientFunds
	}

	res, err := tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("xp = xp - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("account_id = ? AND xp >= ?", accountID, amount).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to spend xp: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}
