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

type PackEventRepository interface {
	InsertTx(ctx context.Context, tx bun.IDB, event *models.PackEvent) error
	HasFreeOpen(ctx context.Context, userID string) (bool, error)
	GetByRequestID(ctx context.Context, requestID string) (*models.PackEvent, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.PackEvent, error)
}

type packEventRepository struct {
	db *bun.DB
}

func NewPackEventRepository(db *bun.DB) PackEventRepository {
	return &packEventRepository{db: db}
}

// InsertTx appends the audit record inside the caller's transaction.
// The partial unique indexes on pack_events turn races into constraint
// violations here, which map back onto the economy sentinels.
func (r *packEventRepository) InsertTx(ctx context.Context, tx bun.IDB, event *models.PackEvent) error {
	if event.OpenedAt.IsZero() {
		event.OpenedAt = time.Now()
	}
	_, err := tx.NewInsert().Model(event).Exec(ctx)
	if err != nil {
		switch violatedConstraint(err) {
		case "idx_pack_events_free_once":
			return ErrAlreadyClaimedFree
		case "idx_pack_events_request_id":
			return ErrDuplicateRequest
		}
		return fmt.Errorf("failed to insert pack event: %w", err)
	}
	return nil
}

func (r *packEventRepository) HasFreeOpen(ctx context.Context, userID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.PackEvent)(nil)).
		Where("user_id = ? AND pack_type = ?", userID, models.PackTypeFree).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check free pack: %w", err)
	}
	return exists, nil
}

// GetByRequestID returns (nil, nil) when no event carries the id; a
// missing idempotency record is a normal result, not an error.
func (r *packEventRepository) GetByRequestID(ctx context.Context, requestID string) (*models.PackEvent, error) {
	if requestID == "" {
		return nil, nil
	}
	event := new(models.PackEvent)
	err := r.db.NewSelect().
		Model(event).
		Where("request_id = ?", requestID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pack event by request id: %w", err)
	}
	return event, nil
}

func (r *packEventRepository) GetByUserID(ctx context.Context, userID string) ([]*models.PackEvent, error) {
	var events []*models.PackEvent
	err := r.db.NewSelect().
		Model(&events).
		Where("user_id = ?", userID).
		Order("opened_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pack events: %w", err)
	}
	return events, nil
}
