package handlers

import (
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name           string      `json:"name" validate:"required"`
	ParticipantIDs []uuid.UUID `json:"participant_ids" validate:"required,min=1"`
	GroupImage     string      `json:"group_image"`
}

type UpdateGroupRequest struct {
	Name       *string `json:"name"`
	GroupImage *string `json:"group_image"`
}

type AddParticipantsRequest struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids" validate:"required,min=1"`
}

type RemoveParticipantRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

func (h *Handler) GetOrCreateOneToOne(c *fiber.Ctx) error {
	me, userID, err := currentUserAnd(c, "userId", "user")
	if err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.GetOrCreateOneToOne(c.UserContext(), me, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CreateGroupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.CreateGroup(c.UserContext(), me, services.CreateGroupInput{
		Name:           req.Name,
		ParticipantIDs: req.ParticipantIDs,
		GroupImage:     req.GroupImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

func (h *Handler) GetUserConversations(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	convs, err := h.Conversations.ListMine(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(convs)
}

func (h *Handler) GetConversation(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.GetByID(c.UserContext(), me, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateGroupRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.UpdateGroupInfo(c.UserContext(), me, id, services.UpdateGroupInput{
		Name:       req.Name,
		GroupImage: req.GroupImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (h *Handler) AddParticipants(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}
	var req AddParticipantsRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.AddParticipants(c.UserContext(), me, id, req.ParticipantIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}

func (h *Handler) RemoveParticipant(c *fiber.Ctx) error {
	me, id, err := currentUserAnd(c, "id", "conversation")
	if err != nil {
		return respondError(c, err)
	}
	var req RemoveParticipantRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	conv, err := h.Conversations.RemoveParticipant(c.UserContext(), me, id, req.ParticipantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(conv)
}
