package handlers

import (
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	FullName   *string `json:"full_name"`
	Profession *string `json:"profession"`
	ProfilePic *string `json:"profile_pic"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.Profiles.Get(c.UserContext(), me)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	user, err := h.Profiles.Update(c.UserContext(), me, services.UpdateProfileInput{
		FullName:   req.FullName,
		Profession: req.Profession,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
