package packs

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool() []*models.Card {
	var pool []*models.Card
	id := int64(1)
	for _, rarity := range models.Rarities {
		for i := 0; i < 4; i++ {
			pool = append(pool, &models.Card{
				ID:       id,
				Name:     fmt.Sprintf("%s card %d", rarity, i),
				Category: models.CategoryScience,
				Rarity:   rarity,
				CardType: models.CardTypeMonster,
				Active:   true,
			})
			id++
		}
	}
	return pool
}

func TestDrawCardCounts(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(1))
	pool := testPool()

	expected := map[models.PackType]int{
		models.PackTypeFree:      3,
		models.PackTypeBasic:     3,
		models.PackTypeRare:      4,
		models.PackTypeEpic:      5,
		models.PackTypeLegendary: 6,
	}

	for packType, count := range expected {
		drawn, err := drawer.Draw(pool, packType)
		require.NoError(t, err)
		assert.Len(t, drawn, count, "pack type %s", packType)
	}
}

func TestDrawRespectsTierFloor(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(42))
	pool := testPool()

	floors := map[models.PackType]models.Rarity{
		models.PackTypeRare:      models.RarityRare,
		models.PackTypeEpic:      models.RarityEpic,
		models.PackTypeLegendary: models.RarityLegendary,
	}

	for packType, floor := range floors {
		for i := 0; i < 200; i++ {
			drawn, err := drawer.Draw(pool, packType)
			require.NoError(t, err)
			assert.True(t, meetsFloor(drawn, floor),
				"pack type %s draw %d has no card at or above %s", packType, i, floor)
		}
	}
}

func TestDrawHigherTiersBiasHigherRarities(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(7))
	pool := testPool()

	rareOrBetter := func(packType models.PackType, draws int) int {
		count := 0
		for i := 0; i < draws; i++ {
			drawn, err := drawer.Draw(pool, packType)
			require.NoError(t, err)
			for _, card := range drawn {
				if card.Rarity.Rank() >= models.RarityRare.Rank() {
					count++
				}
			}
		}
		return count
	}

	basic := rareOrBetter(models.PackTypeBasic, 500)
	legendary := rareOrBetter(models.PackTypeLegendary, 500)
	assert.Greater(t, legendary, basic)
}

func TestDrawUnknownPackType(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(1))
	_, err := drawer.Draw(testPool(), models.PackType("MYTHIC"))
	assert.ErrorAs(t, err, &ErrUnknownPackType{})
}

func TestDrawEmptyPool(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(1))
	_, err := drawer.Draw(nil, models.PackTypeBasic)
	assert.Error(t, err)
}

func TestDrawThinCatalogFallsBack(t *testing.T) {
	drawer := NewDrawer(rand.NewSource(1))
	pool := []*models.Card{
		{ID: 1, Name: "Only Common", Rarity: models.RarityCommon, Active: true},
	}

	drawn, err := drawer.Draw(pool, models.PackTypeLegendary)
	require.NoError(t, err)
	assert.Len(t, drawn, 6)
	for _, card := range drawn {
		assert.Equal(t, models.RarityCommon, card.Rarity)
	}
}
