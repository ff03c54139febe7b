// services/registrar.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"chartridge/models"
	"chartridge/store"
	"chartridge/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Notification modes: "milestone" alerts only when the distinct-player count
// crosses a threshold; "every" alerts on every registration.
const (
	NotifyMilestone = "milestone"
	NotifyEvery     = "every"
)

// tokenAttempts bounds the collision-retry loop. After that the last token is
// used as-is; registration must never fail over token generation.
const tokenAttempts = 5

// RegisterService creates sessions and deduplicates player identity.
type RegisterService struct {
	Store    store.Store
	Geo      utils.CountryResolver
	Notifier utils.Notifier

	NotifyMode string
	// BaseURL of the dashboard, used to build the link in notifications.
	BaseURL string
}

func NewRegisterService(st store.Store, geo utils.CountryResolver, notifier utils.Notifier) *RegisterService {
	mode := os.Getenv("PROWL_TYPE")
	if mode == "" {
		mode = NotifyMilestone
	}
	return &RegisterService{
		Store:      st,
		Geo:        geo,
		Notifier:   notifier,
		NotifyMode: mode,
		BaseURL:    os.Getenv("DASHBOARD_BASE_URL"),
	}
}

// Registration is the outcome of one register call.
type Registration struct {
	SessionID       string
	PlayerID        string
	PlayerGenerated bool
	NewPlayer       bool
}

// Body is the plaintext response the client persists: the session token, plus
// the player token when the server generated it.
func (r Registration) Body() string {
	if r.PlayerGenerated {
		return r.SessionID + "," + r.PlayerID
	}
	return r.SessionID
}

// RegisterSession creates a session row unconditionally, inserts the player
// row if this (game, player) pair is unseen, and fires a milestone
// notification when warranted.
func (s *RegisterService) RegisterSession(gameID, requestedPlayerID, location, ip string) (Registration, error) {
	reg := Registration{
		SessionID: s.newSessionToken(),
		PlayerID:  requestedPlayerID,
	}
	if reg.PlayerID == "" {
		reg.PlayerID = s.newPlayerToken(gameID)
		reg.PlayerGenerated = true
	}

	if location == "" {
		location = "Unknown"
	}

	err := s.Store.CreateSession(&models.Session{
		ID:        reg.SessionID,
		GameID:    gameID,
		PlayerID:  reg.PlayerID,
		StartedAt: time.Now(),
		IPCountry: s.Geo.CountryForIP(ip),
		Location:  location,
	})
	if err != nil {
		return reg, err
	}

	// No rollback of the session row if this fails: partial sequences are
	// accepted beacon behavior.
	created, err := s.Store.EnsurePlayer(gameID, reg.PlayerID)
	if err != nil {
		return reg, err
	}
	reg.NewPlayer = created

	s.maybeNotify(gameID, created)
	return reg, nil
}

func (s *RegisterService) maybeNotify(gameID string, newPlayer bool) {
	playcount, err := s.Store.CountPlayers(gameID)
	if err != nil || playcount == 0 {
		return
	}

	notify := s.NotifyMode == NotifyEvery || (newPlayer && MilestoneReached(playcount))
	if !notify {
		return
	}

	name := gameID
	if game, err := s.Store.GetGame(gameID); err == nil {
		name = game.Name
	}

	people := "people"
	if playcount == 1 {
		people = "person"
	}
	title := cases.Title(language.English).String(name) + " Playcount"
	body := fmt.Sprintf("%s has been played by %d %s.", name, playcount, people)
	link := ""
	if s.BaseURL != "" {
		link = fmt.Sprintf("%s/games/%s", s.BaseURL, gameID)
	}
	s.Notifier.Notify(title, body, link)
}

// MilestoneReached reports whether a distinct-player count is one worth
// alerting on: each of the first 9, then every 5th below 50, every 10th
// below 200, every 25th below 300, every 50th below 500, every 100th after.
func MilestoneReached(playcount int64) bool {
	switch {
	case playcount < 10:
		return true
	case playcount < 50:
		return playcount%5 == 0
	case playcount < 200:
		return playcount%10 == 0
	case playcount < 300:
		return playcount%25 == 0
	case playcount < 500:
		return playcount%50 == 0
	default:
		return playcount%100 == 0
	}
}

// newSessionToken generates a fresh short token, retrying a bounded number of
// times on the (unlikely) collision with an existing session.
func (s *RegisterService) newSessionToken() string {
	token := utils.RandomToken(utils.TokenLength)
	for i := 1; i < tokenAttempts; i++ {
		exists, err := s.Store.SessionExists(token)
		if err != nil || !exists {
			break
		}
		token = utils.RandomToken(utils.TokenLength)
	}
	return token
}

func (s *RegisterService) newPlayerToken(gameID string) string {
	token := utils.RandomToken(utils.TokenLength)
	for i := 1; i < tokenAttempts; i++ {
		exists, err := s.Store.PlayerExists(gameID, token)
		if err != nil || !exists {
			break
		}
		token = utils.RandomToken(utils.TokenLength)
	}
	return token
}

// Register handles GET /register. Without a game parameter the call aborts
// with no output and no side effects.
func (s *RegisterService) Register(c *fiber.Ctx) error {
	gameID := c.Query("game")
	if gameID == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}

	reg, err := s.RegisterSession(gameID, c.Query("player"), c.Query("location"), c.IP())
	if err != nil {
		log.Printf("❌ [REGISTER] failed for game=%s: %v", gameID, err)
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.SendString(reg.Body())
}
