package routes

import (
	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

// Setup mounts every route group on app.
func Setup(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	AuthRoutes(app, h)
	ProfileRoutes(app, h, protected)
	BlockRoutes(app, h, protected)
	ConversationRoutes(app, h, protected)
	MessagingRoutes(app, h, protected)
	UploadRoutes(app, h, protected)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
