package handlers

import (
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (h *Handler) GetContacts(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.Messages.ListContacts(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) GetChatPartners(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.Messages.ListChatPartners(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) GetConversationMessages(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}

	msgs, err := h.Messages.ListByConversation(c.UserContext(), me, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

func (h *Handler) GetMessagesByUser(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}

	msgs, err := h.Messages.ListByUser(c.UserContext(), me, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msgs)
}

func (h *Handler) SendToConversation(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}
	return h.send(c, me, services.ConversationTarget(id))
}

func (h *Handler) SendToUser(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "user")
	if err != nil {
		return respondError(c, err)
	}
	return h.send(c, me, services.UserTarget(id))
}

func (h *Handler) send(c *fiber.Ctx, me uuid.UUID, target services.Target) error {
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	msg, err := h.Messages.Send(c.UserContext(), me, target, services.SendInput{
		Text:  req.Text,
		Image: req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
