package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/policy"
	"github.com/google/uuid"
)

// In-memory stores, used by tests and local runs without Postgres.

type MemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]models.User
	blocks map[uuid.UUID][]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[uuid.UUID]models.User),
		blocks: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok && !seen[id] {
			seen[id] = true
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *MemoryUserRepository) ListExcept(_ context.Context, id uuid.UUID) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	u.FullName, u.Profession, u.ProfilePic = user.FullName, user.Profession, user.ProfilePic
	u.UpdatedAt = time.Now()
	r.users[user.ID] = u
	return nil
}

func (r *MemoryUserRepository) BlockedIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]uuid.UUID{}, r.blocks[userID]...), nil
}

func (r *MemoryUserRepository) HasBlocked(_ context.Context, userID, otherID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return indexOf(r.blocks[userID], otherID) >= 0, nil
}

func (r *MemoryUserRepository) AddBlock(_ context.Context, userID, blockedID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if indexOf(r.blocks[userID], blockedID) >= 0 {
		return ErrDuplicate
	}
	r.blocks[userID] = append(r.blocks[userID], blockedID)
	return nil
}

func (r *MemoryUserRepository) RemoveBlock(_ context.Context, userID, blockedID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.blocks[userID]
	i := indexOf(list, blockedID)
	if i < 0 {
		return ErrNotFound
	}
	r.blocks[userID] = append(list[:i:i], list[i+1:]...)
	return nil
}

type MemoryConversationRepository struct {
	mu     sync.Mutex
	convs  map[uuid.UUID]*models.Conversation
	direct map[string]uuid.UUID
}

func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{
		convs:  make(map[uuid.UUID]*models.Conversation),
		direct: make(map[string]uuid.UUID),
	}
}

func (r *MemoryConversationRepository) FindOrCreateDirect(_ context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := models.DirectKey(a, b)
	if id, ok := r.direct[key]; ok {
		return cloneConversation(r.convs[id]), nil
	}

	now := r.now()
	conv := &models.Conversation{
		ID:        uuid.New(),
		DirectKey: &key,
		CreatedAt: now,
		UpdatedAt: now,
	}
	conv.Members = []models.ConversationMember{
		{ConversationID: conv.ID, UserID: a, Position: 1, JoinedAt: now},
		{ConversationID: conv.ID, UserID: b, Position: 2, JoinedAt: now},
	}
	r.convs[conv.ID] = conv
	r.direct[key] = conv.ID
	return cloneConversation(conv), nil
}

func (r *MemoryConversationRepository) CreateGroup(_ context.Context, conv *models.Conversation, participantIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	now := r.now()
	conv.IsGroup = true
	conv.DirectKey = nil
	conv.CreatedAt, conv.UpdatedAt = now, now
	conv.Members = make([]models.ConversationMember, 0, len(participantIDs))
	for i, id := range participantIDs {
		conv.Members = append(conv.Members, models.ConversationMember{
			ConversationID: conv.ID,
			UserID:         id,
			Position:       i + 1,
			JoinedAt:       now,
		})
	}
	r.convs[conv.ID] = cloneConversation(conv)
	return nil
}

func (r *MemoryConversationRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneConversation(conv), nil
}

func (r *MemoryConversationRepository) ListForUser(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var convs []models.Conversation
	for _, conv := range r.convs {
		if conv.HasParticipant(userID) {
			convs = append(convs, *cloneConversation(conv))
		}
	}
	sort.SliceStable(convs, func(i, j int) bool { return convs[i].UpdatedAt.After(convs[j].UpdatedAt) })
	return convs, nil
}

func (r *MemoryConversationRepository) AddParticipants(_ context.Context, id uuid.UUID, userIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return ErrNotFound
	}
	last := 0
	for _, m := range conv.Members {
		if m.Position > last {
			last = m.Position
		}
	}
	now := r.now()
	for _, userID := range userIDs {
		if conv.HasParticipant(userID) {
			continue
		}
		last++
		conv.Members = append(conv.Members, models.ConversationMember{
			ConversationID: id,
			UserID:         userID,
			Position:       last,
			JoinedAt:       now,
		})
	}
	conv.UpdatedAt = now
	return nil
}

func (r *MemoryConversationRepository) RemoveParticipant(_ context.Context, id, userID uuid.UUID, minMembers int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok || !conv.HasParticipant(userID) {
		return ErrNotFound
	}
	if len(conv.Members)-1 < minMembers {
		return ErrTooFewMembers
	}

	next := policy.NextAdmin(conv, userID)
	kept := conv.Members[:0:0]
	for _, m := range conv.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	conv.Members = kept
	if next != nil {
		conv.GroupAdminID = next
	}
	conv.UpdatedAt = r.now()
	return nil
}

func (r *MemoryConversationRepository) UpdateGroupInfo(_ context.Context, id uuid.UUID, name string, image *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return ErrNotFound
	}
	if name != "" {
		conv.Name = name
	}
	if image != nil {
		conv.GroupImage = *image
	}
	conv.UpdatedAt = r.now()
	return nil
}

func (r *MemoryConversationRepository) Touch(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return ErrNotFound
	}
	now := r.now()
	if at.After(now) {
		now = at
	}
	conv.UpdatedAt = now
	return nil
}

// now is strictly increasing so updated_at ordering is deterministic in tests.
func (r *MemoryConversationRepository) now() time.Time {
	now := time.Now()
	for _, c := range r.convs {
		if !now.After(c.UpdatedAt) {
			now = c.UpdatedAt.Add(time.Nanosecond)
		}
	}
	return now
}

type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []models.Message
	last     time.Time
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

func (r *MemoryMessageRepository) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	now := time.Now()
	if !now.After(r.last) {
		now = r.last.Add(time.Nanosecond)
	}
	r.last = now
	msg.CreatedAt = now
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MemoryMessageRepository) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Message
	for _, m := range r.messages {
		if m.ConversationID != nil && *m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryMessageRepository) LastInConversation(ctx context.Context, conversationID uuid.UUID) (*models.Message, error) {
	msgs, _ := r.ListByConversation(ctx, conversationID)
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return &msgs[len(msgs)-1], nil
}

func (r *MemoryMessageRepository) ListDirect(_ context.Context, a, b uuid.UUID) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Message
	for _, m := range r.messages {
		if m.ReceiverID == nil {
			continue
		}
		if (m.SenderID == a && *m.ReceiverID == b) || (m.SenderID == b && *m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryMessageRepository) DirectPartnerIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []uuid.UUID
	for _, m := range r.messages {
		if m.ReceiverID == nil {
			continue
		}
		var partner uuid.UUID
		switch userID {
		case m.SenderID:
			partner = *m.ReceiverID
		case *m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		if indexOf(ids, partner) < 0 {
			ids = append(ids, partner)
		}
	}
	return ids, nil
}

func cloneConversation(c *models.Conversation) *models.Conversation {
	out := *c
	out.Members = append([]models.ConversationMember(nil), c.Members...)
	if c.GroupAdminID != nil {
		admin := *c.GroupAdminID
		out.GroupAdminID = &admin
	}
	return &out
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

var (
	_ UserRepository         = (*MemoryUserRepository)(nil)
	_ ConversationRepository = (*MemoryConversationRepository)(nil)
	_ MessageRepository      = (*MemoryMessageRepository)(nil)
)
