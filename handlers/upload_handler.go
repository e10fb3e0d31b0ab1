package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// GenerateUploadSignature creates a signature the client uses to upload a chat image straight to Cloudinary.
func (h *Handler) GenerateUploadSignature(c *fiber.Ctx) error {
	if h.Signer == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Image uploads are not configured"})
	}

	sig, err := h.Signer.Sign(time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sig)
}
