package services

import (
	"testing"
	"time"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.users, "test-secret")

	user, err := auth.Register(e.ctx, RegisterInput{
		FullName:   " Jane Doe ",
		Email:      "Jane@Example.com",
		Profession: "designer",
		Password:   "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane@example.com", user.Email)

	stored, err := e.users.FindByID(e.ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.Password)

	token, summary, err := auth.Login(e.ctx, "JANE@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, summary.ID)

	id, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestAuth_Rejections(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.users, "test-secret")

	_, err := auth.Register(e.ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = auth.Register(e.ctx, RegisterInput{FullName: "B", Email: "a@example.com", Password: "password2"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, _, err = auth.Login(e.ctx, "a@example.com", "wrong")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, _, err = auth.Login(e.ctx, "nobody@example.com", "password1")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestAuth_ParseToken(t *testing.T) {
	auth := NewAuthService(nil, "test-secret")
	userID := uuid.New()

	expired, err := auth.IssueToken(userID, time.Now().Add(-2*tokenTTL))
	require.NoError(t, err)
	_, err = auth.ParseToken(expired)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	other, err := NewAuthService(nil, "other-secret").IssueToken(userID, time.Now())
	require.NoError(t, err)
	_, err = auth.ParseToken(other)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))

	_, err = UserIDFromClaims(jwt.MapClaims{"user_id": "not-a-uuid"})
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}
