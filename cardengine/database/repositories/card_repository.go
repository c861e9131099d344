package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/sahilm/fuzzy"
	"github.com/uptrace/bun"
	"golang.org/x/sync/singleflight"
)

const (
	catalogCacheSize = 8
	catalogCacheTTL  = 5 * time.Minute
	catalogCacheKey  = "active_catalog"

	// rarityOrder sorts LEGENDARY first; ties break on name.
	rarityOrder = "CASE rarity WHEN 'LEGENDARY' THEN 0 WHEN 'EPIC' THEN 1 WHEN 'RARE' THEN 2 WHEN 'UNCOMMON' THEN 3 ELSE 4 END"
)

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	BulkCreate(ctx context.Context, cards []*models.Card) (int, error)
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error)
	GetAllActive(ctx context.Context) ([]*models.Card, error)
	CountActive(ctx context.Context) (int, error)
	SearchByName(ctx context.Context, query string) ([]*models.Card, error)
	Retire(ctx context.Context, id int64) error
}

type cardRepository struct {
	db    *bun.DB
	cache *lru.Cache
	group singleflight.Group
}

type catalogCacheEntry struct {
	cards     []*models.Card
	expiresAt time.Time
}

func NewCardRepository(db *bun.DB) CardRepository {
	cache, _ := lru.New(catalogCacheSize)
	return &cardRepository{db: db, cache: cache}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(card).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	r.invalidateCatalog()
	return nil
}

func (r *cardRepository) BulkCreate(ctx context.Context, cards []*models.Card) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	now := time.Now()
	for _, c := range cards {
		c.CreatedAt = now
		c.UpdatedAt = now
	}
	res, err := r.db.NewInsert().Model(&cards).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk create cards: %w", err)
	}
	r.invalidateCatalog()
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (r *cardRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by ids: %w", err)
	}
	return cards, nil
}

// GetAllActive returns the active catalog ordered rarity-first then by
// name. The catalog changes rarely, so reads are served from an LRU
// entry and concurrent reloads collapse into one query.
func (r *cardRepository) GetAllActive(ctx context.Context) ([]*models.Card, error) {
	if entry, ok := r.cache.Get(catalogCacheKey); ok {
		cached := entry.(catalogCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.cards, nil
		}
		r.cache.Remove(catalogCacheKey)
	}

	v, err, _ := r.group.Do(catalogCacheKey, func() (interface{}, error) {
		var cards []*models.Card
		err := r.db.NewSelect().
			Model(&cards).
			Where("active = TRUE").
			OrderExpr(rarityOrder).
			Order("name ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load active catalog: %w", err)
		}
		r.cache.Add(catalogCacheKey, catalogCacheEntry{
			cards:     cards,
			expiresAt: time.Now().Add(catalogCacheTTL),
		})
		return cards, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*models.Card), nil
}

func (r *cardRepository) CountActive(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Where("active = TRUE").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active cards: %w", err)
	}
	return count, nil
}

// cardSearchItems implements fuzzy.Source over catalog entries.
type cardSearchItems []*models.Card

func (items cardSearchItems) Len() int            { return len(items) }
func (items cardSearchItems) String(i int) string { return strings.ToLower(items[i].Name) }

func (r *cardRepository) SearchByName(ctx context.Context, query string) ([]*models.Card, error) {
	cards, err := r.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return cards, nil
	}

	matches := fuzzy.FindFrom(query, cardSearchItems(cards))
	results := make([]*models.Card, 0, len(matches))
	for _, m := range matches {
		results = append(results, cards[m.Index])
	}
	return results, nil
}

// Retire deactivates a card. Retired cards stay owned and playable in
// existing decks but leave the draw pool and the completion total.
func (r *cardRepository) Retire(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*models.Card)(nil)).
		Set("active = FALSE").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to retire card: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrCardNotFound
	}
	r.invalidateCatalog()
	return nil
}

func (r *cardRepository) invalidateCatalog() {
	r.cache.Remove(catalogCacheKey)
}
