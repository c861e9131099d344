package collection

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

func newFixture(t *testing.T, activeCards int) (*Service, *repotest.CardRepo, *repotest.UserCardRepo) {
	t.Helper()
	cards := repotest.NewCardRepo()
	for i := 1; i <= activeCards; i++ {
		cards.Cards = append(cards.Cards, &models.Card{
			ID:       int64(i),
			Name:     fmt.Sprintf("Card %d", i),
			Category: models.CategoryMath,
			Rarity:   models.RarityCommon,
			CardType: models.CardTypeMonster,
			Active:   true,
		})
	}
	userCards := repotest.NewUserCardRepo()
	return NewService(cards, userCards, repotest.NewTxRunner(userCards)), cards, userCards
}

func TestQuantityDefaultsToZero(t *testing.T) {
	svc, _, _ := newFixture(t, 5)

	quantity, err := svc.QuantityOf(context.Background(), "student-1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), quantity)
}

func TestCreditDebitRoundTrip(t *testing.T) {
	svc, _, _ := newFixture(t, 5)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "student-1", 1, 2))

	quantity, err := svc.QuantityOf(ctx, "student-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), quantity)

	// credit n then debit n restores the prior quantity
	require.NoError(t, svc.Credit(ctx, "student-1", 1, 3))
	require.NoError(t, svc.Debit(ctx, "student-1", 1, 3))

	quantity, err = svc.QuantityOf(ctx, "student-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), quantity)
}

func TestDebitMoreThanHeldChangesNothing(t *testing.T) {
	svc, _, _ := newFixture(t, 5)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "student-1", 1, 2))

	err := svc.Debit(ctx, "student-1", 1, 5)
	require.ErrorIs(t, err, repositories.ErrInsufficientQuantity)

	quantity, err := svc.QuantityOf(ctx, "student-1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), quantity)
}

func TestCreditUnknownCard(t *testing.T) {
	svc, _, _ := newFixture(t, 5)

	err := svc.Credit(context.Background(), "student-1", 999, 1)
	assert.ErrorIs(t, err, repositories.ErrCardNotFound)
}

func TestProgressPercentage(t *testing.T) {
	svc, _, _ := newFixture(t, 40)
	ctx := context.Background()

	for cardID := int64(1); cardID <= 10; cardID++ {
		require.NoError(t, svc.Credit(ctx, "student-1", cardID, 1))
	}

	progress, err := svc.Progress(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 10, progress.Owned)
	assert.Equal(t, 40, progress.Total)
	assert.Equal(t, 25, progress.Percentage)
}

func TestProgressEmptyCatalog(t *testing.T) {
	svc, _, _ := newFixture(t, 0)

	progress, err := svc.Progress(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Percentage)
	assert.Equal(t, 0, progress.Total)
}

func TestProgressIgnoresRetiredCards(t *testing.T) {
	svc, cards, _ := newFixture(t, 10)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "student-1", 1, 1))
	require.NoError(t, svc.Credit(ctx, "student-1", 2, 1))
	require.NoError(t, cards.Retire(ctx, 2))

	progress, err := svc.Progress(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Owned)
	assert.Equal(t, 9, progress.Total)
	assert.Equal(t, 11, progress.Percentage)
}

func TestTotalAndUniqueCounts(t *testing.T) {
	svc, _, _ := newFixture(t, 5)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "student-1", 1, 3))
	require.NoError(t, svc.Credit(ctx, "student-1", 2, 1))

	total, err := svc.TotalCardCount(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	unique, err := svc.UniqueCardCount(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 2, unique)
}

func TestListOwned(t *testing.T) {
	svc, _, _ := newFixture(t, 5)
	ctx := context.Background()

	require.NoError(t, svc.Credit(ctx, "student-1", 2, 2))
	require.NoError(t, svc.Credit(ctx, "student-1", 4, 1))

	owned, err := svc.ListOwned(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, owned, 2)

	byID := make(map[int64]int64)
	for _, oc := range owned {
		byID[oc.Card.ID] = oc.Amount
	}
	assert.Equal(t, int64(2), byID[2])
	assert.Equal(t, int64(1), byID[4])
}
