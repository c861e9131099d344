package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Deck is a named multiset of owned cards. CardIDs may repeat up to the
// per-card copy limit. Active=false rows are hidden from listings but
// kept while battle history still points at them; DeleteDeck removes
// the row outright and battle records tolerate the dangling reference.
//
// UpdatedAt doubles as the optimistic-concurrency token for
// composition patches.
type Deck struct {
	bun.BaseModel `bun:"table:decks,alias:d"`

	ID          int64   `bun:"id,pk" json:"id"`
	UserID      string  `bun:"user_id,notnull" json:"user_id"`
	Name        string  `bun:"name,notnull" json:"name"`
	Description string  `bun:"description,type:text,default:''" json:"description"`
	CardIDs     []int64 `bun:"card_ids,type:jsonb" json:"card_ids"`
	Favorite    bool    `bun:"favorite,notnull,default:false" json:"favorite"`
	Active      bool    `bun:"active,notnull,default:true" json:"active"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
