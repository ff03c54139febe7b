// models/session.go
package models

import "time"

// Session is one play-through of a game. Rows are append-only: a session is
// written once by the registrar and never updated afterwards.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	GameID    string    `json:"game_id" gorm:"index;not null"`
	PlayerID  string    `json:"player_id" gorm:"index"`
	StartedAt time.Time `json:"started_at"`
	IPCountry string    `json:"ip_country"`
	Location  string    `json:"location"`
}

// Player is created at most once per (game, player id) pair — first session
// wins. The pair is the primary key so the dedup insert can rely on the
// database constraint instead of a check-then-insert race.
type Player struct {
	GameID    string    `json:"game_id" gorm:"primaryKey"`
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}
