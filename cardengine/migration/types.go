package migration

import "time"

// Mongo document shapes of the legacy mini-game backend. Rarity was a
// numeric level 1..5 and the enum-ish fields were lowercase strings.
type MongoCard struct {
	ID          int64  `bson:"cardId"`
	Name        string `bson:"name"`
	Description string `bson:"description"`
	Category    string `bson:"category"`
	Level       int    `bson:"level"`
	Type        string `bson:"type"`
	Atk         int    `bson:"atk"`
	Def         int    `bson:"def"`
	ImageURL    string `bson:"imageUrl"`
	Effects     []struct {
		Type        string `bson:"type"`
		Amount      int    `bson:"amount"`
		Description string `bson:"description"`
	} `bson:"effects"`
}

type MongoUser struct {
	AccountID string `bson:"accountId"`
	Username  string `bson:"username"`
	XP        int64  `bson:"xp"`
}

type MongoUserCard struct {
	AccountID string     `bson:"accountId"`
	CardID    *int64     `bson:"cardId"`
	Amount    int        `bson:"amount"`
	Obtained  *time.Time `bson:"obtainedAt"`
}

// TableStats counts rows handled per target table.
type TableStats struct {
	Read     int `json:"read"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// MigrationStats is the run summary written to the report file.
type MigrationStats struct {
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Tables    map[string]*TableStats `json:"tables"`
}

func (s *MigrationStats) table(name string) *TableStats {
	if s.Tables == nil {
		s.Tables = make(map[string]*TableStats)
	}
	if s.Tables[name] == nil {
		s.Tables[name] = &TableStats{}
	}
	return s.Tables[name]
}
