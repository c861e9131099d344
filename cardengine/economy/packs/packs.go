package packs

import (
	"fmt"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

// ErrUnknownPackType reports a pack type outside the fixed tier set.
type ErrUnknownPackType struct {
	PackType models.PackType
}

func (e ErrUnknownPackType) Error() string {
	return fmt.Sprintf("unknown pack type: %q", string(e.PackType))
}

// tierSpec fixes the economy of one pack tier. Costs and counts are
// deliberately data, not code, so the whole table reads in one place.
type tierSpec struct {
	cost    int64
	count   int
	weights [5]int        // indexed by models.Rarity Rank(), COMMON..LEGENDARY
	floor   models.Rarity // at least one drawn card has rarity >= floor
}

var tiers = map[models.PackType]tierSpec{
	models.PackTypeFree: {
		cost:    0,
		count:   3,
		weights: [5]int{60, 25, 10, 4, 1},
		floor:   models.RarityCommon,
	},
	models.PackTypeBasic: {
		cost:    100,
		count:   3,
		weights: [5]int{60, 25, 10, 4, 1},
		floor:   models.RarityCommon,
	},
	models.PackTypeRare: {
		cost:    500,
		count:   4,
		weights: [5]int{35, 30, 25, 8, 2},
		floor:   models.RarityRare,
	},
	models.PackTypeEpic: {
		cost:    1500,
		count:   5,
		weights: [5]int{15, 25, 30, 25, 5},
		floor:   models.RarityEpic,
	},
	models.PackTypeLegendary: {
		cost:    5000,
		count:   6,
		weights: [5]int{5, 15, 30, 30, 20},
		floor:   models.RarityLegendary,
	},
}

// Cost returns the XP price of a pack tier.
func Cost(packType models.PackType) (int64, error) {
	tier, ok := tiers[packType]
	if !ok {
		return 0, ErrUnknownPackType{PackType: packType}
	}
	return tier.cost, nil
}

// CardCount returns how many cards a pack of the given tier yields.
func CardCount(packType models.PackType) (int, error) {
	tier, ok := tiers[packType]
	if !ok {
		return 0, ErrUnknownPackType{PackType: packType}
	}
	return tier.count, nil
}
