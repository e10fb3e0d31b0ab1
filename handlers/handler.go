package handlers

import (
	"log"
	"time"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/anjiri1684/chat_backend/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// UploadSigner issues direct-upload signatures. Only the Cloudinary backend has one.
type UploadSigner interface {
	Sign(now time.Time) (services.UploadSignature, error)
}

// Handler holds the services behind the HTTP and websocket routes.
// Signer may be nil when uploads are not configured.
type Handler struct {
	Auth          *services.AuthService
	Profiles      *services.ProfileService
	Blocks        *services.BlockService
	Conversations *services.ConversationService
	Messages      *services.MessageService
	Signer        UploadSigner
	Hub           *websocket.Hub
}

func respondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("Error in %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": apperrors.PublicMessage(err)})
}

func paramUUID(c *fiber.Ctx, name, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.InvalidArgument("Invalid " + what + " ID")
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.InvalidArgument("Cannot parse JSON")
	}
	if err := validate.Struct(out); err != nil {
		return apperrors.InvalidArgument(err.Error())
	}
	return nil
}

// currentUserAnd resolves the caller and one uuid path parameter.
func currentUserAnd(c *fiber.Ctx, param, what string) (uuid.UUID, uuid.UUID, error) {
	me, err := middleware.CurrentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := paramUUID(c, param, what)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return me, id, nil
}
