// services/game_service.go
package services

import (
	"errors"
	"sort"
	"time"

	"chartridge/models"
	"chartridge/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
)

type GameService struct {
	Store store.Store
}

func NewGameService(st store.Store) *GameService {
	return &GameService{Store: st}
}

// GameListItem is a game plus the derived fields the home view sorts on.
type GameListItem struct {
	models.Game
	Playcount  int64      `json:"playcount"`
	LastPlayed *time.Time `json:"last_played,omitempty"`
}

// CreateGame creates a new game from form fields. The id is a
// developer-chosen slug; when omitted it is slugged from the name.
func (s *GameService) CreateGame(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	id := c.FormValue("id")
	if id == "" {
		id = slug.Make(name)
	} else {
		id = slug.Make(id)
	}
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not derive a game id"})
	}

	if _, err := s.Store.GetGame(id); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a game with this id already exists"})
	} else if !errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	game := &models.Game{
		ID:          id,
		Name:        name,
		Checkpoints: c.FormValue("checkpoints"),
		Bonuses:     c.FormValue("bonuses"),

		DisableCheckpointUnit: formFlag(c, "disable_checkpoint_unit"),
		DisableBonusUnit:      formFlag(c, "disable_bonus_unit"),
		DisableScoreUnit:      formFlag(c, "disable_score_unit"),
		DisableIncrementUnit:  formFlag(c, "disable_increment_unit"),
		DisableDataUnit:       formFlag(c, "disable_data_unit"),
	}
	if err := s.Store.CreateGame(game); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create game"})
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

func formFlag(c *fiber.Ctx, key string) bool {
	v := c.FormValue(key)
	return v == "1" || v == "true" || v == "on"
}

// ListGames returns every game with playcount, honoring ?sort= (creation,
// alphabetical, mostpopular, leastpopular, lastplayed).
func (s *GameService) ListGames(c *fiber.Ctx) error {
	games, err := s.Store.ListGames()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
	}

	items := make([]GameListItem, 0, len(games))
	for _, g := range games {
		count, err := s.Store.CountSessions(g.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}
		item := GameListItem{Game: g, Playcount: count}
		if sessions, err := s.Store.ListSessions(g.ID); err == nil && len(sessions) > 0 {
			last := sessions[0].StartedAt
			item.LastPlayed = &last
		}
		items = append(items, item)
	}

	sortGameList(items, c.Query("sort", "creation"))
	return c.JSON(items)
}

func sortGameList(items []GameListItem, mode string) {
	less := func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) }
	switch mode {
	case "alphabetical":
		less = func(i, j int) bool { return items[i].Name < items[j].Name }
	case "mostpopular":
		less = func(i, j int) bool { return items[i].Playcount > items[j].Playcount }
	case "leastpopular":
		less = func(i, j int) bool { return items[i].Playcount < items[j].Playcount }
	case "lastplayed":
		less = func(i, j int) bool {
			li, lj := items[i].LastPlayed, items[j].LastPlayed
			if li == nil {
				return false
			}
			if lj == nil {
				return true
			}
			return li.After(*lj)
		}
	}
	sort.SliceStable(items, less)
}

// GetGame returns a single game record.
func (s *GameService) GetGame(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(game)
}

// UpdateGame edits name, checkpoint/bonus lists and unit toggles. The id is
// immutable: beacons in shipped game builds reference it.
func (s *GameService) UpdateGame(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if name := c.FormValue("name"); name != "" {
		game.Name = name
	}
	game.Checkpoints = c.FormValue("checkpoints", game.Checkpoints)
	game.Bonuses = c.FormValue("bonuses", game.Bonuses)
	game.DisableCheckpointUnit = formFlag(c, "disable_checkpoint_unit")
	game.DisableBonusUnit = formFlag(c, "disable_bonus_unit")
	game.DisableScoreUnit = formFlag(c, "disable_score_unit")
	game.DisableIncrementUnit = formFlag(c, "disable_increment_unit")
	game.DisableDataUnit = formFlag(c, "disable_data_unit")

	if err := s.Store.UpdateGame(game); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update game"})
	}
	return c.JSON(game)
}

// DeleteGame removes the game and cascades across all seven event tables.
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	id := c.Params("id")
	game, err := s.Store.GetGame(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.Store.DeleteGame(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
	}
	return c.JSON(fiber.Map{
		"message": "game deleted permanently",
		"id":      id,
		"name":    game.Name,
	})
}

// ClearGameData wipes all recorded data for a game but keeps the game itself.
func (s *GameService) ClearGameData(c *fiber.Ctx) error {
	id := c.Params("id")
	game, err := s.Store.GetGame(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if err := s.Store.ClearGameData(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to clear game data"})
	}
	return c.JSON(fiber.Map{
		"message": "all data cleared permanently",
		"id":      id,
		"name":    game.Name,
	})
}
