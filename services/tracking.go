// services/tracking.go
package services

import (
	"log"
	"strconv"
	"time"

	"chartridge/models"
	"chartridge/store"

	"github.com/gofiber/fiber/v2"
)

// TrackService is the event recorder behind the /track beacon. Calls are
// fire-and-forget: the endpoint never surfaces an error body, and a call
// missing game or session id is a silent no-op.
type TrackService struct {
	Store store.Store
}

func NewTrackService(st store.Store) *TrackService {
	return &TrackService{Store: st}
}

// EventSpec is exactly one reported event. When a client sends more than one
// recognized field the precedence is checkpoint, bonus, score, increment,
// datum — first recognized shape wins.
type EventSpec struct {
	Checkpoint string
	Bonus      string

	Mode     string
	Score    float64
	HasScore bool

	Increment string
	Set       *int64
	By        *int64
	Decrease  bool

	Data     string
	Value    string
	HasValue bool
}

// Record applies one event. Exactly one row insert or one row update per
// call, never more. No existence check is made against the game or session
// tables: events from untrusted clients may reference ids that were never
// registered, and those rows are kept (permissive beacon semantics).
func (s *TrackService) Record(gameID, sessionID string, spec EventSpec) error {
	if gameID == "" || sessionID == "" {
		return nil
	}
	now := time.Now()

	switch {
	case spec.Checkpoint != "":
		return s.Store.AppendCheckpoint(&models.Checkpoint{
			SessionID: sessionID,
			GameID:    gameID,
			Name:      spec.Checkpoint,
			ReachedAt: now,
		})

	case spec.Bonus != "":
		return s.Store.AppendBonus(&models.Bonus{
			SessionID: sessionID,
			GameID:    gameID,
			Name:      spec.Bonus,
			ReachedAt: now,
		})

	case spec.HasScore && spec.Mode != "":
		return s.Store.AppendScore(&models.Score{
			SessionID:  sessionID,
			GameID:     gameID,
			Mode:       spec.Mode,
			Score:      spec.Score,
			RecordedAt: now,
		})

	case spec.Increment != "":
		delta := int64(1)
		if spec.By != nil {
			delta = *spec.By
		}
		if spec.Decrease {
			delta = -delta
		}
		return s.Store.ApplyIncrement(sessionID, gameID, spec.Increment, delta, spec.Set)

	case spec.Data != "" && spec.HasValue:
		return s.Store.PutDatum(sessionID, gameID, spec.Data, spec.Value)
	}

	return nil
}

// Track handles GET /track. The beacon contract returns no meaningful body,
// including on store failure.
func (s *TrackService) Track(c *fiber.Ctx) error {
	gameID := c.Query("game")
	sessionID := c.Query("id")
	if gameID == "" || sessionID == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	if err := s.Record(gameID, sessionID, specFromQuery(c)); err != nil {
		log.Printf("❌ [TRACK] record failed for game=%s session=%s: %v", gameID, sessionID, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func specFromQuery(c *fiber.Ctx) EventSpec {
	args := c.Context().QueryArgs()
	spec := EventSpec{
		Checkpoint: c.Query("checkpoint"),
		Bonus:      c.Query("bonus"),
		Mode:       c.Query("mode"),
		Increment:  c.Query("increment"),
		Data:       c.Query("data"),
		Value:      c.Query("value"),
		HasValue:   args.Has("value"),
		Decrease:   args.Has("decrease"),
	}

	if args.Has("score") {
		spec.HasScore = true
		// no range validation; unparseable input degrades to 0
		spec.Score, _ = strconv.ParseFloat(c.Query("score"), 64)
	}
	if args.Has("set") {
		n, _ := strconv.ParseInt(c.Query("set"), 10, 64)
		spec.Set = &n
	}
	if args.Has("by") {
		n, _ := strconv.ParseInt(c.Query("by"), 10, 64)
		spec.By = &n
	}
	return spec
}
