package routes

import (
	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", protected)
	profile.Get("", h.GetProfile)
	profile.Put("", h.UpdateProfile)
}
