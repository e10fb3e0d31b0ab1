package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", InvalidArgument("bad"), fiber.StatusBadRequest},
		{"conflict", Conflict("already"), fiber.StatusBadRequest},
		{"not found", NotFound("missing"), fiber.StatusNotFound},
		{"forbidden", Forbidden("no"), fiber.StatusForbidden},
		{"unauthorized", Unauthorized("who"), fiber.StatusUnauthorized},
		{"plain", errors.New("db down"), fiber.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", Forbidden("no")), fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "User not found", PublicMessage(NotFound("User not found")))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(NotFound("x"), KindForbidden))
	assert.False(t, Is(nil, KindInternal))
}
