package routes

import (
	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func BlockRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	block := api.Group("/block", protected)
	block.Get("", h.GetBlockedUsers)
	block.Get("/check/:userId", h.CheckIfBlocked)
	block.Post("/:userId", h.BlockUser)
	block.Delete("/:userId", h.UnblockUser)
}

func ConversationRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	conversations := api.Group("/conversations", protected)
	conversations.Get("", h.GetUserConversations)
	conversations.Get("/one-to-one/:userId", h.GetOrCreateOneToOne)
	conversations.Post("/group", h.CreateGroup)
	conversations.Get("/:id", h.GetConversation)
	conversations.Put("/:id", h.UpdateGroup)
	conversations.Post("/:id/participants", h.AddParticipants)
	conversations.Delete("/:id/participants", h.RemoveParticipant)
}

func MessagingRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	// static segments go first so /:id does not swallow them
	messages := api.Group("/messages", protected)
	messages.Get("/contacts", h.GetContacts)
	messages.Get("/chats", h.GetChatPartners)
	messages.Get("/conversation/:id", h.GetConversationMessages)
	messages.Post("/conversation/:id/send", h.SendToConversation)
	messages.Post("/send/:id", h.SendToUser)
	messages.Get("/:id", h.GetMessagesByUser)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
