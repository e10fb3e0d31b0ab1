package routes

import (
	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", protected)
	uploads.Get("/signature", h.GenerateUploadSignature)
}
