package battle

import (
	"context"
	"testing"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBattleFixture(t *testing.T) (*Service, *repotest.DeckRepo) {
	t.Helper()
	decks := repotest.NewDeckRepo()
	return NewService(repotest.NewBattleRepo(), decks), decks
}

func TestRecordAndStats(t *testing.T) {
	svc, _ := newBattleFixture(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, "student-1", "student-2", nil, true)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "student-1", "student-3", nil, true)
	require.NoError(t, err)
	_, err = svc.Record(ctx, "student-1", "student-2", nil, false)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 0.6667, stats.WinRate, 0.001)
}

func TestStatsForUserWithoutBattles(t *testing.T) {
	svc, _ := newBattleFixture(t)

	stats, err := svc.Stats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, stats.Wins)
	assert.Zero(t, stats.Losses)
	assert.Zero(t, stats.WinRate)
}

func TestRecordRejectsForeignDeck(t *testing.T) {
	svc, decks := newBattleFixture(t)
	ctx := context.Background()

	deck := &models.Deck{ID: 7, UserID: "student-2", Name: "Theirs", Active: true}
	require.NoError(t, decks.Create(ctx, deck))

	deckID := int64(7)
	_, err := svc.Record(ctx, "student-1", "student-2", &deckID, true)
	assert.ErrorIs(t, err, repositories.ErrDeckNotFound)
}

func TestRecordKeepsDeckReference(t *testing.T) {
	svc, decks := newBattleFixture(t)
	ctx := context.Background()

	deck := &models.Deck{ID: 3, UserID: "student-1", Name: "Mine", Active: true}
	require.NoError(t, decks.Create(ctx, deck))

	deckID := int64(3)
	record, err := svc.Record(ctx, "student-1", "student-2", &deckID, true)
	require.NoError(t, err)
	require.NotNil(t, record.DeckID)
	assert.Equal(t, int64(3), *record.DeckID)
}

func TestLeaderboardOrdersByWins(t *testing.T) {
	svc, _ := newBattleFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, "alice", "bob", nil, true)
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, "bob", "alice", nil, true)
	require.NoError(t, err)

	rows, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, 3, rows[0].Wins)
}
