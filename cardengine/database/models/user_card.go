// models/user_card.go
package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserCard is one row of the collection ledger: how many copies of a
// card an account owns. At most one row exists per (account, card);
// a row whose amount would reach zero is deleted instead.
type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   string    `bun:"user_id,notnull"`
	CardID   int64     `bun:"card_id,notnull"`
	Amount   int64     `bun:"amount,notnull,default:1"`
	Obtained time.Time `bun:"obtained,notnull,default:current_timestamp"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
