// models/game.go
package models

import (
	"strings"
	"time"
)

// Game is a tracked title. The ID is a developer-chosen slug and is what game
// clients send in tracking beacons, so it is immutable once created.
type Game struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`

	// Ordered, comma-separated display lists. Their order drives funnel and
	// progress-bar rendering and their length is the completion denominator.
	Checkpoints string `json:"checkpoints"`
	Bonuses     string `json:"bonuses"`

	// 🎛️ Dashboard unit toggles
	DisableCheckpointUnit bool `json:"disable_checkpoint_unit"`
	DisableBonusUnit      bool `json:"disable_bonus_unit"`
	DisableScoreUnit      bool `json:"disable_score_unit"`
	DisableIncrementUnit  bool `json:"disable_increment_unit"`
	DisableDataUnit       bool `json:"disable_data_unit"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointNames returns the ordered checkpoint list with empty entries dropped.
func (g *Game) CheckpointNames() []string {
	return splitNames(g.Checkpoints)
}

// BonusNames returns the ordered bonus list with empty entries dropped.
func (g *Game) BonusNames() []string {
	return splitNames(g.Bonuses)
}

func splitNames(csv string) []string {
	var names []string
	for _, n := range strings.Split(csv, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}
