package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/uptrace/bun"
)

type BattleRepository interface {
	Create(ctx context.Context, record *models.BattleRecord) error
	StatsFor(ctx context.Context, userID string) (*models.BattleStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.BattleStats, error)
}

type battleRepository struct {
	db *bun.DB
}

func NewBattleRepository(db *bun.DB) BattleRepository {
	return &battleRepository{db: db}
}

func (r *battleRepository) Create(ctx context.Context, record *models.BattleRecord) error {
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record battle: %w", err)
	}
	return nil
}

func (r *battleRepository) StatsFor(ctx context.Context, userID string) (*models.BattleStats, error) {
	stats := &models.BattleStats{UserID: userID}
	err := r.db.NewSelect().
		Model((*models.BattleRecord)(nil)).
		ColumnExpr("COUNT(*) FILTER (WHERE won) AS wins").
		ColumnExpr("COUNT(*) FILTER (WHERE NOT won) AS losses").
		Where("user_id = ?", userID).
		Scan(ctx, &stats.Wins, &stats.Losses)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate battle stats: %w", err)
	}
	if total := stats.Wins + stats.Losses; total > 0 {
		stats.WinRate = float64(stats.Wins) / float64(total)
	}
	return stats, nil
}

func (r *battleRepository) Leaderboard(ctx context.Context, limit int) ([]*models.BattleStats, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []*models.BattleStats
	err := r.db.NewSelect().
		Model((*models.BattleRecord)(nil)).
		ColumnExpr("user_id").
		ColumnExpr("COUNT(*) FILTER (WHERE won) AS wins").
		ColumnExpr("COUNT(*) FILTER (WHERE NOT won) AS losses").
		GroupExpr("user_id").
		OrderExpr("wins DESC, losses ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load battle leaderboard: %w", err)
	}
	for _, s := range rows {
		if total := s.Wins + s.Losses; total > 0 {
			s.WinRate = float64(s.Wins) / float64(total)
		}
	}
	return rows, nil
}
