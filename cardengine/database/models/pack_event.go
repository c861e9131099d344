package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PackType string

const (
	PackTypeFree      PackType = "FREE"
	PackTypeBasic     PackType = "BASIC"
	PackTypeRare      PackType = "RARE"
	PackTypeEpic      PackType = "EPIC"
	PackTypeLegendary PackType = "LEGENDARY"
)

func (t PackType) Valid() bool {
	switch t {
	case PackTypeFree, PackTypeBasic, PackTypeRare, PackTypeEpic, PackTypeLegendary:
		return true
	}
	return false
}

// PackEvent is the append-only audit record of a pack opening.
//
// Two partial unique indexes back the economy invariants:
//   - (user_id) WHERE pack_type = 'FREE' — at most one free pack per
//     account, enforced by the database rather than a read-then-write.
//   - (request_id) WHERE request_id <> '' — idempotency: a retried open
//     with the same request id replays the stored result.
type PackEvent struct {
	bun.BaseModel `bun:"table:pack_events,alias:pe"`

	ID        int64    `bun:"id,pk,autoincrement" json:"id"`
	UserID    string   `bun:"user_id,notnull" json:"user_id"`
	PackType  PackType `bun:"pack_type,notnull,type:text" json:"pack_type"`
	XPSpent   int64    `bun:"xp_spent,notnull,default:0" json:"xp_spent"`
	CardIDs   []int64  `bun:"card_ids,type:jsonb" json:"card_ids"`
	RequestID string   `bun:"request_id,type:text,default:''" json:"request_id,omitempty"`

	OpenedAt time.Time `bun:"opened_at,notnull,default:current_timestamp" json:"opened_at"`
}
