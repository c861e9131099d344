package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Migrator imports the legacy Mongo mini-game data into Postgres.
// Import order preserves referential integrity: cards, then users,
// then the per-user card rows.
type Migrator struct {
	pgDB      *bun.DB
	mongoDB   *mongo.Database
	batchSize int
	stats     MigrationStats
}

func NewMigrator(pgDB *bun.DB, client *mongo.Client, dbName string) *Migrator {
	return &Migrator{
		pgDB:      pgDB,
		mongoDB:   client.Database(dbName),
		batchSize: 1000,
		stats: MigrationStats{
			Tables:    make(map[string]*TableStats),
			StartTime: time.Now(),
		},
	}
}

// SetBatchSize overrides the default batch size for inserts.
func (m *Migrator) SetBatchSize(size int) {
	if size > 0 {
		m.batchSize = size
	}
}

func (m *Migrator) MigrateAll(ctx context.Context) error {
	m.stats.StartTime = time.Now()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"cards", m.migrateCards},
		{"users", m.migrateUsers},
		{"user_cards", m.migrateUserCards},
	}

	for _, step := range steps {
		slog.Info("starting migration step", slog.String("step", step.name))
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("migration failed at step %s: %w", step.name, err)
		}
		slog.Info("completed migration step", slog.String("step", step.name))
	}

	m.stats.EndTime = time.Now()
	if err := m.writeReport(); err != nil {
		slog.Error("failed to write migration report", slog.String("error", err.Error()))
	}

	slog.Info("migration completed",
		slog.Duration("took", m.stats.EndTime.Sub(m.stats.StartTime)))
	return nil
}

func (m *Migrator) migrateCards(ctx context.Context) error {
	cur, err := m.mongoDB.Collection("cards").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query cards: %w", err)
	}
	defer cur.Close(ctx)

	stats := m.stats.table("cards")
	var batch []*models.Card
	for cur.Next(ctx) {
		var mc MongoCard
		if err := cur.Decode(&mc); err != nil {
			stats.Skipped++
			continue
		}
		stats.Read++
		if mc.Name == "" {
			stats.Skipped++
			continue
		}
		batch = append(batch, convertCard(mc))
		if len(batch) >= m.batchSize {
			if err := m.insertCards(ctx, batch, stats); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.insertCards(ctx, batch, stats)
	}
	return nil
}

func (m *Migrator) insertCards(ctx context.Context, cards []*models.Card, stats *TableStats) error {
	res, err := m.pgDB.NewInsert().
		Model(&cards).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert cards batch: %w", err)
	}
	affected, _ := res.RowsAffected()
	stats.Imported += int(affected)
	return nil
}

func (m *Migrator) migrateUsers(ctx context.Context) error {
	cur, err := m.mongoDB.Collection("users").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	defer cur.Close(ctx)

	stats := m.stats.table("users")

	// Deduplicate on account id; the legacy data has repeats and the
	// latest record wins.
	byAccount := make(map[string]*models.User)
	for cur.Next(ctx) {
		var mu MongoUser
		if err := cur.Decode(&mu); err != nil {
			stats.Skipped++
			continue
		}
		stats.Read++
		if mu.AccountID == "" {
			stats.Skipped++
			continue
		}
		byAccount[mu.AccountID] = convertUser(mu)
	}
	if err := cur.Err(); err != nil {
		return err
	}

	users := make([]*models.User, 0, len(byAccount))
	for _, user := range byAccount {
		users = append(users, user)
	}

	for start := 0; start < len(users); start += m.batchSize {
		end := start + m.batchSize
		if end > len(users) {
			end = len(users)
		}
		batch := users[start:end]
		res, err := m.pgDB.NewInsert().
			Model(&batch).
			On("CONFLICT (account_id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("xp = EXCLUDED.xp").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert users batch: %w", err)
		}
		affected, _ := res.RowsAffected()
		stats.Imported += int(affected)
	}
	return nil
}

func (m *Migrator) migrateUserCards(ctx context.Context) error {
	var validCardIDs []int64
	err := m.pgDB.NewSelect().
		Model((*models.Card)(nil)).
		Column("id").
		Scan(ctx, &validCardIDs)
	if err != nil {
		return fmt.Errorf("failed to get valid card ids: %w", err)
	}
	valid := make(map[int64]bool, len(validCardIDs))
	for _, id := range validCardIDs {
		valid[id] = true
	}

	cur, err := m.mongoDB.Collection("usercards").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query usercards: %w", err)
	}
	defer cur.Close(ctx)

	stats := m.stats.table("user_cards")
	var batch []*models.UserCard
	for cur.Next(ctx) {
		var mc MongoUserCard
		if err := cur.Decode(&mc); err != nil {
			stats.Skipped++
			continue
		}
		stats.Read++
		if mc.CardID == nil || mc.AccountID == "" || !valid[*mc.CardID] {
			stats.Skipped++
			continue
		}
		batch = append(batch, convertUserCard(mc))
		if len(batch) >= m.batchSize {
			if err := m.insertUserCards(ctx, batch, stats); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return m.insertUserCards(ctx, batch, stats)
	}
	return nil
}

func (m *Migrator) insertUserCards(ctx context.Context, userCards []*models.UserCard, stats *TableStats) error {
	// Re-imports fold into the existing quantities instead of colliding
	// with the (user_id, card_id) unique index.
	res, err := m.pgDB.NewInsert().
		Model(&userCards).
		On("CONFLICT (user_id, card_id) DO UPDATE").
		Set("amount = user_cards.amount + EXCLUDED.amount").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert user cards batch: %w", err)
	}
	affected, _ := res.RowsAffected()
	stats.Imported += int(affected)
	return nil
}

func (m *Migrator) writeReport() error {
	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("migration_report_%s.json", m.stats.EndTime.Format("20060102_150405"))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return err
	}
	slog.Info("migration report written", slog.String("file", name))
	return nil
}
