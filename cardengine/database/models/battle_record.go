package models

import (
	"time"

	"github.com/uptrace/bun"
)

// BattleRecord stores one finished battle from the winner-and-loser
// perspective of a single account. DeckID is nullable: decks can be
// hard-deleted after the fact.
type BattleRecord struct {
	bun.BaseModel `bun:"table:battle_records,alias:br"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	UserID     string `bun:"user_id,notnull" json:"user_id"`
	OpponentID string `bun:"opponent_id,notnull" json:"opponent_id"`
	DeckID     *int64 `bun:"deck_id,nullzero" json:"deck_id,omitempty"`
	Won        bool   `bun:"won,notnull" json:"won"`

	FinishedAt time.Time `bun:"finished_at,notnull,default:current_timestamp" json:"finished_at"`
}

// BattleStats is an aggregation result, never persisted.
type BattleStats struct {
	UserID  string  `bun:"user_id" json:"user_id"`
	Wins    int     `bun:"wins" json:"wins"`
	Losses  int     `bun:"losses" json:"losses"`
	WinRate float64 `bun:"-" json:"win_rate"`
}
