// Package repotest provides in-memory repository fakes for service
// tests. The fakes mirror the observable behavior of the Postgres
// repositories, including the sentinel errors raised by the unique
// indexes on pack_events and, through TxRunner, the all-or-nothing
// behavior of transactional flows.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/economy/utils"
	"github.com/uptrace/bun"
)

type UserRepo struct {
	XP map[string]int64
}

var _ repositories.UserRepository = (*UserRepo)(nil)

func NewUserRepo() *UserRepo {
	return &UserRepo{XP: make(map[string]int64)}
}

func (f *UserRepo) Create(_ context.Context, user *models.User) error {
	f.XP[user.AccountID] = user.XP
	return nil
}

func (f *UserRepo) GetByAccountID(_ context.Context, accountID string) (*models.User, error) {
	xp, ok := f.XP[accountID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &models.User{AccountID: accountID, XP: xp}, nil
}

func (f *UserRepo) GetXP(_ context.Context, accountID string) (int64, error) {
	xp, ok := f.XP[accountID]
	if !ok {
		return 0, repositories.ErrUserNotFound
	}
	return xp, nil
}

func (f *UserRepo) GrantXP(_ context.Context, accountID string, amount int64) error {
	if _, ok := f.XP[accountID]; !ok {
		return repositories.ErrUserNotFound
	}
	f.XP[accountID] += amount
	return nil
}

func (f *UserRepo) SpendXPTx(_ context.Context, _ bun.IDB, accountID string, amount int64) error {
	if amount == 0 {
		return nil
	}
	xp, ok := f.XP[accountID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	if xp < amount {
		return repositories.ErrInsufficientFunds
	}
	f.XP[accountID] = xp - amount
	return nil
}

type CardRepo struct {
	Cards []*models.Card
}

var _ repositories.CardRepository = (*CardRepo)(nil)

func NewCardRepo(cards ...*models.Card) *CardRepo {
	return &CardRepo{Cards: cards}
}

func (f *CardRepo) Create(_ context.Context, card *models.Card) error {
	f.Cards = append(f.Cards, card)
	return nil
}

func (f *CardRepo) BulkCreate(_ context.Context, cards []*models.Card) (int, error) {
	f.Cards = append(f.Cards, cards...)
	return len(cards), nil
}

func (f *CardRepo) GetByID(_ context.Context, id int64) (*models.Card, error) {
	for _, card := range f.Cards {
		if card.ID == id {
			return card, nil
		}
	}
	return nil, repositories.ErrCardNotFound
}

func (f *CardRepo) GetByIDs(_ context.Context, ids []int64) ([]*models.Card, error) {
	byID := make(map[int64]*models.Card, len(f.Cards))
	for _, card := range f.Cards {
		byID[card.ID] = card
	}
	seen := make(map[int64]bool, len(ids))
	var result []*models.Card
	for _, id := range ids {
		if card, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, card)
		}
	}
	return result, nil
}

func (f *CardRepo) GetAllActive(_ context.Context) ([]*models.Card, error) {
	var active []*models.Card
	for _, card := range f.Cards {
		if card.Active {
			active = append(active, card)
		}
	}
	return active, nil
}

func (f *CardRepo) CountActive(ctx context.Context) (int, error) {
	active, _ := f.GetAllActive(ctx)
	return len(active), nil
}

func (f *CardRepo) SearchByName(ctx context.Context, _ string) ([]*models.Card, error) {
	return f.GetAllActive(ctx)
}

func (f *CardRepo) Retire(_ context.Context, id int64) error {
	for _, card := range f.Cards {
		if card.ID == id {
			card.Active = false
			return nil
		}
	}
	return repositories.ErrCardNotFound
}

type UserCardRepo struct {
	Owned map[string]map[int64]int64
}

var _ repositories.UserCardRepository = (*UserCardRepo)(nil)

func NewUserCardRepo() *UserCardRepo {
	return &UserCardRepo{Owned: make(map[string]map[int64]int64)}
}

func (f *UserCardRepo) GetUserCard(_ context.Context, userID string, cardID int64) (*models.UserCard, error) {
	amount := f.Owned[userID][cardID]
	if amount == 0 {
		return nil, sql.ErrNoRows
	}
	return &models.UserCard{UserID: userID, CardID: cardID, Amount: amount}, nil
}

func (f *UserCardRepo) GetAllByUserID(_ context.Context, userID string) ([]*models.UserCard, error) {
	ids := make([]int64, 0, len(f.Owned[userID]))
	for cardID := range f.Owned[userID] {
		ids = append(ids, cardID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]*models.UserCard, 0, len(ids))
	for _, cardID := range ids {
		result = append(result, &models.UserCard{UserID: userID, CardID: cardID, Amount: f.Owned[userID][cardID]})
	}
	return result, nil
}

func (f *UserCardRepo) QuantityOf(_ context.Context, userID string, cardID int64) (int64, error) {
	return f.Owned[userID][cardID], nil
}

func (f *UserCardRepo) TotalCount(_ context.Context, userID string) (int64, error) {
	var total int64
	for _, amount := range f.Owned[userID] {
		total += amount
	}
	return total, nil
}

func (f *UserCardRepo) UniqueCount(_ context.Context, userID string) (int, error) {
	return len(f.Owned[userID]), nil
}

func (f *UserCardRepo) AddTx(_ context.Context, _ bun.IDB, userID string, cardID int64, amount int64) error {
	if f.Owned[userID] == nil {
		f.Owned[userID] = make(map[int64]int64)
	}
	f.Owned[userID][cardID] += amount
	return nil
}

func (f *UserCardRepo) RemoveTx(_ context.Context, _ bun.IDB, userID string, cardID int64, amount int64) error {
	if f.Owned[userID][cardID] < amount {
		return repositories.ErrInsufficientQuantity
	}
	f.Owned[userID][cardID] -= amount
	if f.Owned[userID][cardID] == 0 {
		delete(f.Owned[userID], cardID)
	}
	return nil
}

// PackEventRepo reproduces the partial unique index behavior of the
// pack_events table at insert time.
type PackEventRepo struct {
	Events []*models.PackEvent
	nextID int64
}

var _ repositories.PackEventRepository = (*PackEventRepo)(nil)

func NewPackEventRepo() *PackEventRepo {
	return &PackEventRepo{}
}

func (f *PackEventRepo) InsertTx(_ context.Context, _ bun.IDB, event *models.PackEvent) error {
	for _, existing := range f.Events {
		if event.PackType == models.PackTypeFree &&
			existing.PackType == models.PackTypeFree &&
			existing.UserID == event.UserID {
			return repositories.ErrAlreadyClaimedFree
		}
		if event.RequestID != "" && existing.RequestID == event.RequestID {
			return repositories.ErrDuplicateRequest
		}
	}
	f.nextID++
	event.ID = f.nextID
	if event.OpenedAt.IsZero() {
		event.OpenedAt = time.Now()
	}
	f.Events = append(f.Events, event)
	return nil
}

func (f *PackEventRepo) HasFreeOpen(_ context.Context, userID string) (bool, error) {
	for _, event := range f.Events {
		if event.UserID == userID && event.PackType == models.PackTypeFree {
			return true, nil
		}
	}
	return false, nil
}

func (f *PackEventRepo) GetByRequestID(_ context.Context, requestID string) (*models.PackEvent, error) {
	if requestID == "" {
		return nil, nil
	}
	for _, event := range f.Events {
		if event.RequestID == requestID {
			return event, nil
		}
	}
	return nil, nil
}

func (f *PackEventRepo) GetByUserID(_ context.Context, userID string) ([]*models.PackEvent, error) {
	var result []*models.PackEvent
	for _, event := range f.Events {
		if event.UserID == userID {
			result = append(result, event)
		}
	}
	return result, nil
}

type DeckRepo struct {
	Decks map[int64]*models.Deck
}

var _ repositories.DeckRepository = (*DeckRepo)(nil)

func NewDeckRepo() *DeckRepo {
	return &DeckRepo{Decks: make(map[int64]*models.Deck)}
}

func (f *DeckRepo) Create(_ context.Context, deck *models.Deck) error {
	now := time.Now()
	deck.CreatedAt = now
	deck.UpdatedAt = now
	stored := *deck
	f.Decks[deck.ID] = &stored
	return nil
}

func (f *DeckRepo) GetByID(_ context.Context, id int64) (*models.Deck, error) {
	deck, ok := f.Decks[id]
	if !ok {
		return nil, repositories.ErrDeckNotFound
	}
	copied := *deck
	copied.CardIDs = append([]int64(nil), deck.CardIDs...)
	return &copied, nil
}

func (f *DeckRepo) GetByUserID(_ context.Context, userID string) ([]*models.Deck, error) {
	var decks []*models.Deck
	for _, deck := range f.Decks {
		if deck.UserID == userID && deck.Active {
			copied := *deck
			decks = append(decks, &copied)
		}
	}
	sort.Slice(decks, func(i, j int) bool {
		if decks[i].Favorite != decks[j].Favorite {
			return decks[i].Favorite
		}
		return decks[i].CreatedAt.After(decks[j].CreatedAt)
	})
	return decks, nil
}

func (f *DeckRepo) Update(_ context.Context, deck *models.Deck, expectedUpdatedAt time.Time) error {
	stored, ok := f.Decks[deck.ID]
	if !ok {
		return repositories.ErrDeckNotFound
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return repositories.ErrDeckConflict
	}
	deck.UpdatedAt = time.Now()
	deck.CreatedAt = stored.CreatedAt
	copied := *deck
	f.Decks[deck.ID] = &copied
	return nil
}

func (f *DeckRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.Decks[id]; !ok {
		return repositories.ErrDeckNotFound
	}
	delete(f.Decks, id)
	return nil
}

type BattleRepo struct {
	Records []*models.BattleRecord
	nextID  int64
}

var _ repositories.BattleRepository = (*BattleRepo)(nil)

func NewBattleRepo() *BattleRepo {
	return &BattleRepo{}
}

func (f *BattleRepo) Create(_ context.Context, record *models.BattleRecord) error {
	f.nextID++
	record.ID = f.nextID
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}
	f.Records = append(f.Records, record)
	return nil
}

func (f *BattleRepo) StatsFor(_ context.Context, userID string) (*models.BattleStats, error) {
	stats := &models.BattleStats{UserID: userID}
	for _, record := range f.Records {
		if record.UserID != userID {
			continue
		}
		if record.Won {
			stats.Wins++
		} else {
			stats.Losses++
		}
	}
	if total := stats.Wins + stats.Losses; total > 0 {
		stats.WinRate = float64(stats.Wins) / float64(total)
	}
	return stats, nil
}

func (f *BattleRepo) Leaderboard(_ context.Context, limit int) ([]*models.BattleStats, error) {
	byUser := make(map[string]*models.BattleStats)
	for _, record := range f.Records {
		stats, ok := byUser[record.UserID]
		if !ok {
			stats = &models.BattleStats{UserID: record.UserID}
			byUser[record.UserID] = stats
		}
		if record.Won {
			stats.Wins++
		} else {
			stats.Losses++
		}
	}
	rows := make([]*models.BattleStats, 0, len(byUser))
	for _, stats := range byUser {
		if total := stats.Wins + stats.Losses; total > 0 {
			stats.WinRate = float64(stats.Wins) / float64(total)
		}
		rows = append(rows, stats)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].Losses < rows[j].Losses
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// restorable is implemented by fakes whose state participates in
// transactions: snapshot returns a closure that puts the fake back to
// the captured state.
type restorable interface {
	snapshot() func()
}

func (f *UserRepo) snapshot() func() {
	saved := make(map[string]int64, len(f.XP))
	for account, xp := range f.XP {
		saved[account] = xp
	}
	return func() { f.XP = saved }
}

func (f *UserCardRepo) snapshot() func() {
	saved := make(map[string]map[int64]int64, len(f.Owned))
	for userID, cards := range f.Owned {
		copied := make(map[int64]int64, len(cards))
		for cardID, amount := range cards {
			copied[cardID] = amount
		}
		saved[userID] = copied
	}
	return func() { f.Owned = saved }
}

func (f *PackEventRepo) snapshot() func() {
	savedEvents := append([]*models.PackEvent(nil), f.Events...)
	savedNextID := f.nextID
	return func() {
		f.Events = savedEvents
		f.nextID = savedNextID
	}
}

// TxRunner mirrors the all-or-nothing property of a real transaction:
// the fakes it was built with are snapshotted before the callback runs
// and restored when the callback fails. The zero value runs callbacks
// with no rollback.
type TxRunner struct {
	repos []restorable
}

var _ utils.TxRunner = TxRunner{}

func NewTxRunner(repos ...restorable) TxRunner {
	return TxRunner{repos: repos}
}

func (r TxRunner) WithTransaction(ctx context.Context, _ *utils.TransactionOptions, fn func(context.Context, bun.IDB) error) error {
	restores := make([]func(), 0, len(r.repos))
	for _, repo := range r.repos {
		restores = append(restores, repo.snapshot())
	}
	if err := fn(ctx, nil); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}
