package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/chat_backend/handlers"
	"github.com/anjiri1684/chat_backend/middleware"
	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/anjiri1684/chat_backend/routes"
	"github.com/anjiri1684/chat_backend/services"
	"github.com/anjiri1684/chat_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testServer struct {
	app   *fiber.App
	auth  *services.AuthService
	users *repository.MemoryUserRepository
}

func newTestServer(t *testing.T, signer handlers.UploadSigner) *testServer {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	convs := repository.NewMemoryConversationRepository()
	messages := repository.NewMemoryMessageRepository()
	hub := websocket.NewHub()
	auth := services.NewAuthService(users, testSecret)

	h := &handlers.Handler{
		Auth:          auth,
		Profiles:      services.NewProfileService(users, nil),
		Blocks:        services.NewBlockService(users),
		Conversations: services.NewConversationService(users, convs, messages),
		Messages:      services.NewMessageService(users, convs, messages, nil, hub),
		Signer:        signer,
		Hub:           hub,
	}

	app := fiber.New()
	routes.Setup(app, h, middleware.Protected(testSecret))
	return &testServer{app: app, auth: auth, users: users}
}

// user creates a user and returns its id and a bearer token.
func (s *testServer) user(t *testing.T, name string) (uuid.UUID, string) {
	t.Helper()
	u := &models.User{FullName: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, s.users.Create(context.Background(), u))
	token, err := s.auth.IssueToken(u.ID, time.Now())
	require.NoError(t, err)
	return u.ID, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode(t *testing.T, raw []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, out), string(raw))
}

func errorOf(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]string
	decode(t, raw, &body)
	return body["error"]
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": "Jane Doe", "email": "jane@example.com", "password": "secret1", "profession": "designer",
	})
	require.Equal(t, http.StatusCreated, status)

	status, raw := s.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"full_name": "Jane Again", "email": "jane@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", errorOf(t, raw))

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "jane@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw = s.do(t, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "jane@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	var login struct {
		Token string               `json:"token"`
		User  services.UserSummary `json:"user"`
	}
	decode(t, raw, &login)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "Jane Doe", login.User.FullName)

	status, _ = s.do(t, http.MethodGet, "/api/v1/conversations", login.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodGet, "/api/v1/block", "", nil)
	assert.Equal(t, http.StatusBadRequest, status, "missing token")

	status, _ = s.do(t, http.MethodGet, "/api/v1/block", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestBlockEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	alice, aliceToken := s.user(t, "alice")
	bob, bobToken := s.user(t, "bob")

	status, raw := s.do(t, http.MethodPost, "/api/v1/block/"+alice.String(), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot block yourself", errorOf(t, raw))

	status, _ = s.do(t, http.MethodPost, "/api/v1/block/"+uuid.NewString(), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/block/not-a-uuid", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/block/"+bob.String(), aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/v1/block/"+bob.String(), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status, "already blocked")

	status, raw = s.do(t, http.MethodGet, "/api/v1/block/check/"+alice.String(), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var check services.BlockStatus
	decode(t, raw, &check)
	assert.Equal(t, services.BlockStatus{IsBlocked: false, HasBlockedUs: true, Blocked: true}, check)

	status, raw = s.do(t, http.MethodGet, "/api/v1/block", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var blocked []services.UserSummary
	decode(t, raw, &blocked)
	require.Len(t, blocked, 1)
	assert.Equal(t, bob, blocked[0].ID)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/block/"+bob.String(), aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, raw = s.do(t, http.MethodDelete, "/api/v1/block/"+bob.String(), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User is not blocked", errorOf(t, raw))
}

func TestConversationAndMessageEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	u1, t1 := s.user(t, "u1")
	u2, t2 := s.user(t, "u2")
	_, t3 := s.user(t, "u3")

	status, raw := s.do(t, http.MethodGet, "/api/v1/conversations/one-to-one/"+u2.String(), t1, nil)
	require.Equal(t, http.StatusOK, status)
	var conv services.ConversationView
	decode(t, raw, &conv)
	assert.False(t, conv.IsGroup)

	status, raw = s.do(t, http.MethodGet, "/api/v1/conversations/one-to-one/"+u1.String(), t2, nil)
	require.Equal(t, http.StatusOK, status)
	var again services.ConversationView
	decode(t, raw, &again)
	assert.Equal(t, conv.ID, again.ID)

	status, _ = s.do(t, http.MethodGet, "/api/v1/conversations/one-to-one/"+u1.String(), t1, nil)
	assert.Equal(t, http.StatusBadRequest, status, "self conversation")

	sendPath := "/api/v1/messages/conversation/" + conv.ID.String() + "/send"
	status, _ = s.do(t, http.MethodPost, sendPath, t1, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status, "empty message")

	status, raw = s.do(t, http.MethodPost, sendPath, t1, fiber.Map{"text": "hi"})
	require.Equal(t, http.StatusCreated, status)
	var msg services.MessageView
	decode(t, raw, &msg)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "u1", msg.Sender.FullName)

	status, _ = s.do(t, http.MethodPost, sendPath, t3, fiber.Map{"text": "intruder"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/messages/conversation/"+conv.ID.String(), t3, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/messages/conversation/"+uuid.NewString(), t1, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/messages/conversation/"+conv.ID.String(), t2, nil)
	require.Equal(t, http.StatusOK, status)
	var msgs []services.MessageView
	decode(t, raw, &msgs)
	require.Len(t, msgs, 1)

	status, _ = s.do(t, http.MethodPost, "/api/v1/block/"+u1.String(), t2, nil)
	require.Equal(t, http.StatusOK, status)
	status, raw = s.do(t, http.MethodPost, sendPath, t1, fiber.Map{"text": "again"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "This user has blocked you. Cannot send messages.", errorOf(t, raw))

	status, raw = s.do(t, http.MethodGet, "/api/v1/conversations", t1, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []services.ConversationView
	decode(t, raw, &mine)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].LastMessage)
	assert.Equal(t, "hi", mine[0].LastMessage.Text)

	status, _ = s.do(t, http.MethodGet, "/api/v1/conversations/"+conv.ID.String(), t3, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGroupEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	u1, t1 := s.user(t, "u1")
	u2, t2 := s.user(t, "u2")
	u3, t3 := s.user(t, "u3")

	status, _ := s.do(t, http.MethodPost, "/api/v1/conversations/group", t1, fiber.Map{
		"name": "   ", "participant_ids": []uuid.UUID{u2},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/conversations/group", t1, fiber.Map{"name": "Team"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, raw := s.do(t, http.MethodPost, "/api/v1/conversations/group", t1, fiber.Map{
		"name": "Team", "participant_ids": []uuid.UUID{u2, u3},
	})
	require.Equal(t, http.StatusCreated, status)
	var group services.ConversationView
	decode(t, raw, &group)
	assert.True(t, group.IsGroup)
	assert.Len(t, group.Participants, 3)
	require.NotNil(t, group.GroupAdmin)
	assert.Equal(t, u1, group.GroupAdmin.ID)

	base := "/api/v1/conversations/" + group.ID.String()

	status, _ = s.do(t, http.MethodPut, base, t2, fiber.Map{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = s.do(t, http.MethodPut, base, t1, fiber.Map{"name": "Renamed"})
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &group)
	assert.Equal(t, "Renamed", group.Name)

	status, _ = s.do(t, http.MethodPost, base+"/participants", t1, fiber.Map{"participant_ids": []uuid.UUID{u2}})
	assert.Equal(t, http.StatusBadRequest, status, "no new participants")

	status, _ = s.do(t, http.MethodDelete, base+"/participants", t3, fiber.Map{"participant_id": u1})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw = s.do(t, http.MethodDelete, base+"/participants", t2, fiber.Map{"participant_id": u2})
	require.Equal(t, http.StatusOK, status)
	decode(t, raw, &group)
	assert.Len(t, group.Participants, 2)
	assert.Equal(t, u1, group.GroupAdmin.ID)

	status, _ = s.do(t, http.MethodDelete, base+"/participants", t1, fiber.Map{"participant_id": u3})
	assert.Equal(t, http.StatusBadRequest, status, "below minimum")

	status, _ = s.do(t, http.MethodPost, "/api/v1/messages/conversation/"+group.ID.String()+"/send", t3, fiber.Map{"text": "hello team"})
	assert.Equal(t, http.StatusCreated, status)
}

func TestLegacyMessageEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	me, myToken := s.user(t, "me")
	other, otherToken := s.user(t, "other")

	status, _ := s.do(t, http.MethodPost, "/api/v1/messages/send/"+me.String(), myToken, fiber.Map{"text": "to self"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/messages/send/"+uuid.NewString(), myToken, fiber.Map{"text": "ghost"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/messages/send/"+other.String(), myToken, fiber.Map{"text": "hey"})
	require.Equal(t, http.StatusCreated, status)

	status, raw := s.do(t, http.MethodGet, "/api/v1/messages/"+me.String(), otherToken, nil)
	require.Equal(t, http.StatusOK, status)
	var thread []services.MessageView
	decode(t, raw, &thread)
	require.Len(t, thread, 1)
	assert.Equal(t, "hey", thread[0].Text)

	status, raw = s.do(t, http.MethodGet, "/api/v1/messages/chats", otherToken, nil)
	require.Equal(t, http.StatusOK, status)
	var partners []services.UserSummary
	decode(t, raw, &partners)
	require.Len(t, partners, 1)
	assert.Equal(t, me, partners[0].ID)

	status, raw = s.do(t, http.MethodGet, "/api/v1/messages/contacts", myToken, nil)
	require.Equal(t, http.StatusOK, status)
	var contacts []services.UserSummary
	decode(t, raw, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, other, contacts[0].ID)

	status, _ = s.do(t, http.MethodPost, "/api/v1/block/"+other.String(), myToken, nil)
	require.Equal(t, http.StatusOK, status)
	status, raw = s.do(t, http.MethodPost, "/api/v1/messages/send/"+other.String(), myToken, fiber.Map{"text": "hey"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You have blocked this user. Cannot send messages.", errorOf(t, raw))
}

type stubSigner struct{}

func (stubSigner) Sign(now time.Time) (services.UploadSignature, error) {
	return services.UploadSignature{Signature: "sig", Timestamp: now.Unix(), APIKey: "key", CloudName: "demo", Folder: "chat_images"}, nil
}

func TestUploadSignature(t *testing.T) {
	s := newTestServer(t, nil)
	_, token := s.user(t, "u1")
	status, raw := s.do(t, http.MethodGet, "/api/v1/uploads/signature", token, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Image uploads are not configured", errorOf(t, raw))

	s = newTestServer(t, stubSigner{})
	_, token = s.user(t, "u1")
	status, raw = s.do(t, http.MethodGet, "/api/v1/uploads/signature", token, nil)
	require.Equal(t, http.StatusOK, status)
	var sig services.UploadSignature
	decode(t, raw, &sig)
	assert.Equal(t, "sig", sig.Signature)
	assert.Equal(t, "chat_images", sig.Folder)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t, nil)
	status, _ := s.do(t, http.MethodGet, "/api/v1/ws", "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	me, token := s.user(t, "me")

	status, raw := s.do(t, http.MethodPut, "/api/v1/profile", token, fiber.Map{"full_name": "Renamed", "profile_pic": "https://img/me.png"})
	require.Equal(t, http.StatusOK, status)

	status, raw = s.do(t, http.MethodGet, "/api/v1/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var profile services.UserSummary
	decode(t, raw, &profile)
	assert.Equal(t, me, profile.ID)
	assert.Equal(t, "Renamed", profile.FullName)
	assert.Equal(t, "https://img/me.png", profile.ProfilePic)
}
