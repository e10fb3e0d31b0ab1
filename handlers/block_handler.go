package handlers

import (
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) BlockUser(c *fiber.Ctx) error {
	me, userID, err := currentUserAnd(c, "userId", "user")
	if err != nil {
		return respondError(c, err)
	}

	blocked, err := h.Blocks.Block(c.UserContext(), me, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked successfully", "blocked_users": blocked})
}

func (h *Handler) UnblockUser(c *fiber.Ctx) error {
	me, userID, err := currentUserAnd(c, "userId", "user")
	if err != nil {
		return respondError(c, err)
	}

	blocked, err := h.Blocks.Unblock(c.UserContext(), me, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked successfully", "blocked_users": blocked})
}

func (h *Handler) GetBlockedUsers(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	users, err := h.Blocks.ListBlocked(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) CheckIfBlocked(c *fiber.Ctx) error {
	me, userID, err := currentUserAnd(c, "userId", "user")
	if err != nil {
		return respondError(c, err)
	}

	status, err := h.Blocks.Status(c.UserContext(), me, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}
