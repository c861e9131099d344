package decks

import (
	"context"
	"fmt"
	"testing"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories"
	"github.com/projectklase/comunika-cards/cardengine/database/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deckFixture struct {
	decks     *repotest.DeckRepo
	cards     *repotest.CardRepo
	userCards *repotest.UserCardRepo
	svc       *Service
}

// newDeckFixture seeds a catalog of 20 cards and gives student-1 two
// copies of each.
func newDeckFixture(t *testing.T) *deckFixture {
	t.Helper()
	f := &deckFixture{
		decks:     repotest.NewDeckRepo(),
		cards:     repotest.NewCardRepo(),
		userCards: repotest.NewUserCardRepo(),
	}
	for i := 1; i <= 20; i++ {
		f.cards.Cards = append(f.cards.Cards, &models.Card{
			ID:       int64(i),
			Name:     fmt.Sprintf("Card %d", i),
			Category: models.CategoryHistory,
			Rarity:   models.RarityCommon,
			CardType: models.CardTypeMonster,
			Active:   true,
		})
		require.NoError(t, f.userCards.AddTx(context.Background(), nil, "student-1", int64(i), 2))
	}
	f.svc = NewService(f.decks, f.cards, f.userCards)

	var next int64
	f.svc.newID = func() int64 { next++; return next }
	return f
}

func TestCreateDeck(t *testing.T) {
	f := newDeckFixture(t)

	deck, err := f.svc.Create(context.Background(), "student-1", "Starter", "", ids(5))
	require.NoError(t, err)
	assert.NotZero(t, deck.ID)
	assert.True(t, deck.Active)

	got, err := f.svc.Get(context.Background(), "student-1", deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.CardIDs, got.CardIDs)
}

func TestCreateDeckRejectsIllegalComposition(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "student-1", "Tiny", "", ids(4))
	assert.ErrorIs(t, err, ErrTooFewCards)

	_, err = f.svc.Create(ctx, "student-1", "Huge", "", ids(16))
	assert.ErrorIs(t, err, ErrTooManyCards)

	var tooMany TooManyCopiesError
	_, err = f.svc.Create(ctx, "student-1", "Triples", "", []int64{1, 1, 1, 2, 3})
	assert.ErrorAs(t, err, &tooMany)
}

func TestCreateDeckRequiresOwnership(t *testing.T) {
	f := newDeckFixture(t)

	// student-2 owns nothing
	_, err := f.svc.Create(context.Background(), "student-2", "Borrowed", "", ids(5))
	assert.ErrorIs(t, err, repositories.ErrInsufficientQuantity)
}

func TestCreateDeckUnknownCard(t *testing.T) {
	f := newDeckFixture(t)

	_, err := f.svc.Create(context.Background(), "student-1", "Ghost", "", []int64{1, 2, 3, 4, 999})
	assert.ErrorIs(t, err, repositories.ErrCardNotFound)
}

func TestGetDeckOfOtherUserIsNotFound(t *testing.T) {
	f := newDeckFixture(t)

	deck, err := f.svc.Create(context.Background(), "student-1", "Starter", "", ids(5))
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "student-2", deck.ID)
	assert.ErrorIs(t, err, repositories.ErrDeckNotFound)
}

func TestListFavoritesFirst(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, "student-1", "First", "", ids(5))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, "student-1", "Second", "", ids(6))
	require.NoError(t, err)

	favorite := true
	_, err = f.svc.Update(ctx, "student-1", first.ID, DeckPatch{Favorite: &favorite})
	require.NoError(t, err)

	listed, err := f.svc.List(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
}

func TestUpdateMetadataSkipsCompositionChecks(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	deck, err := f.svc.Create(ctx, "student-1", "Starter", "", ids(5))
	require.NoError(t, err)

	name := "Renamed"
	updated, err := f.svc.Update(ctx, "student-1", deck.ID, DeckPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, deck.CardIDs, updated.CardIDs)
}

func TestUpdateCompositionRevalidates(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	deck, err := f.svc.Create(ctx, "student-1", "Starter", "", ids(5))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "student-1", deck.ID, DeckPatch{CardIDs: ids(3)})
	assert.ErrorIs(t, err, ErrTooFewCards)

	updated, err := f.svc.Update(ctx, "student-1", deck.ID, DeckPatch{CardIDs: ids(10)})
	require.NoError(t, err)
	assert.Len(t, updated.CardIDs, 10)
}

func TestUpdateConflictOnConcurrentWrite(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	deck, err := f.svc.Create(ctx, "student-1", "Starter", "", ids(5))
	require.NoError(t, err)

	// read a copy, then let another writer bump updated_at
	stale, err := f.svc.Get(ctx, "student-1", deck.ID)
	require.NoError(t, err)
	f.decks.Decks[deck.ID].UpdatedAt = f.decks.Decks[deck.ID].UpdatedAt.Add(1)

	stale.Name = "Renamed"
	err = f.decks.Update(ctx, stale, stale.UpdatedAt)
	assert.ErrorIs(t, err, repositories.ErrDeckConflict)
}

func TestDeleteDeckIsHard(t *testing.T) {
	f := newDeckFixture(t)
	ctx := context.Background()

	deck, err := f.svc.Create(ctx, "student-1", "Starter", "", ids(5))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "student-1", deck.ID))

	_, err = f.svc.Get(ctx, "student-1", deck.ID)
	assert.ErrorIs(t, err, repositories.ErrDeckNotFound)

	err = f.svc.Delete(ctx, "student-1", deck.ID)
	assert.ErrorIs(t, err, repositories.ErrDeckNotFound)
}
