package packs

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/projectklase/comunika-cards/cardengine/database/models"
)

// Drawer picks cards for a pack from the active catalog using the
// tier's weight table. The random source is injectable so tests can
// fix a seed.
type Drawer struct {
	rng *rand.Rand
}

func NewDrawer(src rand.Source) *Drawer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Drawer{rng: rand.New(src)}
}

// Draw selects the cards for one pack. Duplicates are allowed; the
// ledger credit aggregates copies per card id. The tier floor is
// enforced by re-rolling the final slot when no draw reached it.
func (d *Drawer) Draw(pool []*models.Card, packType models.PackType) ([]*models.Card, error) {
	tier, ok := tiers[packType]
	if !ok {
		return nil, ErrUnknownPackType{PackType: packType}
	}

	buckets := make([][]*models.Card, len(models.Rarities))
	for _, card := range pool {
		rank := card.Rarity.Rank()
		if rank < 0 {
			continue
		}
		buckets[rank] = append(buckets[rank], card)
	}

	// Weights for empty buckets are zeroed so a thin catalog never
	// stalls the draw.
	weights := tier.weights
	total := 0
	for rank := range weights {
		if len(buckets[rank]) == 0 {
			weights[rank] = 0
		}
		total += weights[rank]
	}
	if total == 0 {
		return nil, fmt.Errorf("no active cards available to draw from")
	}

	drawn := make([]*models.Card, 0, tier.count)
	for i := 0; i < tier.count; i++ {
		rank := d.pickRank(weights, total)
		bucket := buckets[rank]
		drawn = append(drawn, bucket[d.rng.Intn(len(bucket))])
	}

	if tier.floor.Rank() > 0 && !meetsFloor(drawn, tier.floor) {
		if card := d.drawAtLeast(buckets, tier.floor); card != nil {
			drawn[len(drawn)-1] = card
		}
	}

	return drawn, nil
}

func (d *Drawer) pickRank(weights [5]int, total int) int {
	roll := d.rng.Intn(total)
	for rank, w := range weights {
		if roll < w {
			return rank
		}
		roll -= w
	}
	return len(weights) - 1
}

// drawAtLeast picks uniformly from the lowest non-empty bucket at or
// above the floor, falling back downwards when the catalog has no card
// that rare.
func (d *Drawer) drawAtLeast(buckets [][]*models.Card, floor models.Rarity) *models.Card {
	for rank := floor.Rank(); rank < len(buckets); rank++ {
		if len(buckets[rank]) > 0 {
			bucket := buckets[rank]
			return bucket[d.rng.Intn(len(bucket))]
		}
	}
	for rank := floor.Rank() - 1; rank >= 0; rank-- {
		if len(buckets[rank]) > 0 {
			bucket := buckets[rank]
			return bucket[d.rng.Intn(len(bucket))]
		}
	}
	return nil
}

func meetsFloor(cards []*models.Card, floor models.Rarity) bool {
	for _, card := range cards {
		if card.Rarity.Rank() >= floor.Rank() {
			return true
		}
	}
	return false
}
