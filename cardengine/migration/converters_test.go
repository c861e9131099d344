package migration

import (
	"testing"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRarity(t *testing.T) {
	assert.Equal(t, models.RarityCommon, convertRarity(1))
	assert.Equal(t, models.RarityUncommon, convertRarity(2))
	assert.Equal(t, models.RarityRare, convertRarity(3))
	assert.Equal(t, models.RarityEpic, convertRarity(4))
	assert.Equal(t, models.RarityLegendary, convertRarity(5))

	// out-of-range legacy levels degrade to COMMON
	assert.Equal(t, models.RarityCommon, convertRarity(0))
	assert.Equal(t, models.RarityCommon, convertRarity(9))
}

func TestConvertCardTypeAndCategory(t *testing.T) {
	assert.Equal(t, models.CardTypeSpell, convertCardType("spell"))
	assert.Equal(t, models.CardTypeTrap, convertCardType(" TRAP "))
	assert.Equal(t, models.CardTypeMonster, convertCardType("creature"))

	assert.Equal(t, models.CategoryScience, convertCategory("science"))
	assert.Equal(t, models.CategoryLanguage, convertCategory("portuguese"))
	assert.Equal(t, models.CategoryMath, convertCategory("unknown"))
}

func TestConvertCardDropsInvalidEffects(t *testing.T) {
	mc := MongoCard{
		ID:       7,
		Name:     " Volcano Drake ",
		Category: "science",
		Level:    4,
		Type:     "monster",
		Atk:      120,
		Def:      80,
	}
	mc.Effects = []struct {
		Type        string `bson:"type"`
		Amount      int    `bson:"amount"`
		Description string `bson:"description"`
	}{
		{Type: "burn", Amount: 10},
		{Type: "nonsense", Amount: 99},
	}

	card := convertCard(mc)
	assert.Equal(t, "Volcano Drake", card.Name)
	assert.Equal(t, models.RarityEpic, card.Rarity)
	assert.True(t, card.Active)
	require.Len(t, card.Effects, 1)
	assert.Equal(t, models.EffectBurn, card.Effects[0].Type)
}

func TestConvertUserCardClampsAmount(t *testing.T) {
	cardID := int64(3)
	uc := convertUserCard(MongoUserCard{AccountID: "acct-1", CardID: &cardID, Amount: 0})
	assert.Equal(t, int64(1), uc.Amount)
	assert.Equal(t, int64(3), uc.CardID)
}
