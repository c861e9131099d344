package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User mirrors the platform account as far as the card game needs it:
// identity plus the spendable XP balance. The rest of the profile lives
// in the main platform service.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	AccountID string `bun:"account_id,notnull,unique" json:"account_id"`
	Username  string `bun:"username,notnull" json:"username"`
	XP        int64  `bun:"xp,notnull,default:0" json:"xp"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
