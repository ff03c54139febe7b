// handlers/game.go
package handlers

import (
	"chartridge/middleware"
	"chartridge/services"

	"github.com/gofiber/fiber/v2"
)

// SetupGameRoutes registers the admin dashboard API behind the admin token.
func SetupGameRoutes(app *fiber.App, gameService *services.GameService, statsService *services.StatsService) {
	admin := app.Group("/", middleware.AdminAuthMiddleware())

	// Game management
	admin.Post("/games", gameService.CreateGame)
	admin.Get("/games", gameService.ListGames)
	admin.Get("/games/:id", gameService.GetGame)
	admin.Put("/games/:id", gameService.UpdateGame)
	admin.Delete("/games/:id", gameService.DeleteGame)
	admin.Post("/games/:id/clear", gameService.ClearGameData)

	// Aggregated views
	admin.Get("/games/:id/stats", statsService.GameStats)
	admin.Get("/games/:id/info", statsService.GameInfo)
	admin.Get("/games/:id/sessions", statsService.GameSessions)
	admin.Get("/games/:id/sessions/:session_id", statsService.SessionDetail)
	admin.Get("/games/:id/players/:player_id", statsService.PlayerDetail)
	admin.Get("/games/:id/scores", statsService.GameScores)
}
