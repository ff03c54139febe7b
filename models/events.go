// models/events.go
package models

import "time"

// Checkpoint is an append-only milestone event. A client reporting the same
// checkpoint twice for one session produces two rows; there is no idempotency
// key on purpose.
type Checkpoint struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index"`
	GameID    string    `json:"game_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	ReachedAt time.Time `json:"reached_at"`
}

// Bonus is an append-only optional-achievement event, same shape as Checkpoint.
type Bonus struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"index"`
	GameID    string    `json:"game_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	ReachedAt time.Time `json:"reached_at"`
}

// Score is one score report. Mode is a free-text leaderboard bucket; scores
// are floats with no range validation.
type Score struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	SessionID  string    `json:"session_id" gorm:"index"`
	GameID     string    `json:"game_id" gorm:"index;not null"`
	Mode       string    `json:"mode"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Increment is a per-session named counter. Exactly one row per
// (session, game, name); the value is mutated in place on later reports.
type Increment struct {
	ID        string `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"uniqueIndex:idx_increment_key"`
	GameID    string `json:"game_id" gorm:"uniqueIndex:idx_increment_key;not null"`
	Name      string `json:"name" gorm:"uniqueIndex:idx_increment_key"`
	Value     int64  `json:"value"`
}

// Datum is a per-session free-text value. Exactly one row per
// (session, game, name), last write wins.
type Datum struct {
	ID        string `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"uniqueIndex:idx_datum_key"`
	GameID    string `json:"game_id" gorm:"uniqueIndex:idx_datum_key;not null"`
	Name      string `json:"name" gorm:"uniqueIndex:idx_datum_key"`
	Value     string `json:"value"`
}
