package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Rarity is the ordered card rarity classification. Rank() gives the
// ordering used by draw tables and catalog sorting.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Rarities lists all rarities from lowest to highest.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

func (r Rarity) Rank() int {
	switch r {
	case RarityCommon:
		return 0
	case RarityUncommon:
		return 1
	case RarityRare:
		return 2
	case RarityEpic:
		return 3
	case RarityLegendary:
		return 4
	}
	return -1
}

func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

type CardType string

const (
	CardTypeMonster CardType = "MONSTER"
	CardTypeSpell   CardType = "SPELL"
	CardTypeTrap    CardType = "TRAP"
)

// Category is the subject domain a card belongs to.
type Category string

const (
	CategoryMath     Category = "MATH"
	CategoryScience  Category = "SCIENCE"
	CategoryHistory  Category = "HISTORY"
	CategoryLanguage Category = "LANGUAGE"
	CategoryArts     Category = "ARTS"
	CategorySports   Category = "SPORTS"
)

// EffectType is the closed vocabulary of card effect tags. Keeping it a
// typed constant set (instead of free strings) lets a battle resolver
// switch exhaustively over effects.
type EffectType string

const (
	EffectBurn      EffectType = "BURN"
	EffectShield    EffectType = "SHIELD"
	EffectBoost     EffectType = "BOOST"
	EffectHeal      EffectType = "HEAL"
	EffectFreeze    EffectType = "FREEZE"
	EffectDouble    EffectType = "DOUBLE"
	EffectReflect   EffectType = "REFLECT"
	EffectSwapStats EffectType = "SWAP_STATS"
	EffectDrain     EffectType = "DRAIN"
)

func (t EffectType) Valid() bool {
	switch t {
	case EffectBurn, EffectShield, EffectBoost, EffectHeal, EffectFreeze,
		EffectDouble, EffectReflect, EffectSwapStats, EffectDrain:
		return true
	}
	return false
}

// Effect is one effect entry on a card.
type Effect struct {
	Type        EffectType `json:"type"`
	Amount      int        `json:"amount"`
	Description string     `json:"description,omitempty"`
}

type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID          int64    `bun:"id,pk,autoincrement" json:"id"`
	Name        string   `bun:"name,notnull" json:"name"`
	Description string   `bun:"description,type:text,default:''" json:"description"`
	Category    Category `bun:"category,notnull,type:text" json:"category"`
	Rarity      Rarity   `bun:"rarity,notnull,type:text" json:"rarity"`
	CardType    CardType `bun:"card_type,notnull,type:text" json:"card_type"`

	// Atk/Def are only meaningful for MONSTER cards; zero otherwise.
	Atk int `bun:"atk,notnull,default:0" json:"atk"`
	Def int `bun:"def,notnull,default:0" json:"def"`

	Effects  []Effect `bun:"effects,type:jsonb" json:"effects,omitempty"`
	ImageURL string   `bun:"image_url,type:text,default:''" json:"image_url,omitempty"`
	Active   bool     `bun:"active,notnull,default:true" json:"active"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
