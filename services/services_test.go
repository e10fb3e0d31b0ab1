package services

import (
	"context"
	"sync"
	"testing"

	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type pushed struct {
	userID  uuid.UUID
	event   string
	payload interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	pushes []pushed
}

func (n *recordingNotifier) Notify(userID uuid.UUID, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, pushed{userID: userID, event: event, payload: payload})
}

func (n *recordingNotifier) recipients() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range n.pushes {
		ids = append(ids, p.userID)
	}
	return ids
}

type fakeUploader struct {
	url   string
	err   error
	calls []string
}

func (u *fakeUploader) Upload(_ context.Context, image string) (string, error) {
	u.calls = append(u.calls, image)
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

type env struct {
	ctx      context.Context
	users    *repository.MemoryUserRepository
	convs    *repository.MemoryConversationRepository
	messages *repository.MemoryMessageRepository
	notifier *recordingNotifier

	blocks        *BlockService
	conversations *ConversationService
	messaging     *MessageService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ctx:      context.Background(),
		users:    repository.NewMemoryUserRepository(),
		convs:    repository.NewMemoryConversationRepository(),
		messages: repository.NewMemoryMessageRepository(),
		notifier: &recordingNotifier{},
	}
	e.blocks = NewBlockService(e.users)
	e.conversations = NewConversationService(e.users, e.convs, e.messages)
	e.messaging = NewMessageService(e.users, e.convs, e.messages, nil, e.notifier)
	return e
}

func (e *env) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := &models.User{
		FullName:   name,
		Email:      name + "@example.com",
		Profession: "engineer",
		Password:   "x",
	}
	require.NoError(t, e.users.Create(e.ctx, u))
	return u.ID
}

func participantIDs(view *ConversationView) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(view.Participants))
	for _, p := range view.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}
