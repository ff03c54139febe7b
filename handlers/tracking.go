// handlers/tracking.go
package handlers

import (
	"chartridge/services"

	"github.com/gofiber/fiber/v2"
)

// SetupTrackingRoutes registers the client-facing beacon endpoints. These are
// plain GETs with query parameters and no authentication.
func SetupTrackingRoutes(app *fiber.App, trackService *services.TrackService, registerService *services.RegisterService) {
	app.Get("/track", trackService.Track)
	app.Get("/register", registerService.Register)
}
