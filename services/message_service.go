package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/policy"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
)

const EventNewMessage = "newMessage"

// Notifier delivers a real-time event to a user's live connection, if any.
// Delivery is best effort; offline users are skipped silently.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload interface{})
}

// Target addresses a send: a conversation, or a single user on the legacy direct path.
type Target struct {
	id             uuid.UUID
	isConversation bool
}

func ConversationTarget(id uuid.UUID) Target { return Target{id: id, isConversation: true} }
func UserTarget(id uuid.UUID) Target         { return Target{id: id} }

func (t Target) ID() uuid.UUID        { return t.id }
func (t Target) IsConversation() bool { return t.isConversation }

type SendInput struct {
	Text  string
	Image string
}

type MessageService struct {
	users    repository.UserRepository
	convs    repository.ConversationRepository
	messages repository.MessageRepository
	uploader ImageUploader
	notifier Notifier
}

// NewMessageService wires the messaging core. uploader and notifier may be nil:
// images are then stored as sent and nothing is pushed.
func NewMessageService(
	users repository.UserRepository,
	convs repository.ConversationRepository,
	messages repository.MessageRepository,
	uploader ImageUploader,
	notifier Notifier,
) *MessageService {
	return &MessageService{
		users:    users,
		convs:    convs,
		messages: messages,
		uploader: uploader,
		notifier: notifier,
	}
}

func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, target Target, in SendInput) (*MessageView, error) {
	if in.Text == "" && in.Image == "" {
		return nil, apperrors.InvalidArgument("Text or image is required.")
	}

	var (
		conv       *models.Conversation
		recipients []uuid.UUID
		err        error
	)
	if target.IsConversation() {
		conv, recipients, err = s.authorizeConversation(ctx, senderID, target.ID())
	} else {
		recipients, err = s.authorizeDirect(ctx, senderID, target.ID())
	}
	if err != nil {
		return nil, err
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("find sender: %w", err)
	}

	image := in.Image
	if image != "" && s.uploader != nil {
		if image, err = s.uploader.Upload(ctx, image); err != nil {
			if apperrors.KindOf(err) != apperrors.KindInternal {
				return nil, err
			}
			return nil, fmt.Errorf("upload image: %w", err)
		}
	}

	msg := models.Message{SenderID: senderID, Text: in.Text, Image: image}
	if conv != nil {
		msg.ConversationID = &conv.ID
	} else {
		receiverID := target.ID()
		msg.ReceiverID = &receiverID
	}
	if err := s.messages.Create(ctx, &msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if conv != nil {
		// the message is persisted; a failed touch only skews conversation ordering
		if err := s.convs.Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
			log.Printf("Error touching conversation %s: %v", conv.ID, err)
		}
	}

	view := newMessageView(msg, *sender)
	s.deliver(senderID, recipients, &view)
	return &view, nil
}

func (s *MessageService) authorizeConversation(ctx context.Context, senderID, conversationID uuid.UUID) (*models.Conversation, []uuid.UUID, error) {
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NotFound("Conversation not found.")
		}
		return nil, nil, fmt.Errorf("find conversation: %w", err)
	}

	var rel policy.BlockRelation
	if other, ok := conv.OtherParticipant(senderID); ok && conv.HasParticipant(senderID) {
		if rel, err = blockRelation(ctx, s.users, senderID, other); err != nil {
			return nil, nil, err
		}
	}
	if err := policy.CanMessageConversation(senderID, conv, rel); err != nil {
		return nil, nil, err
	}

	var recipients []uuid.UUID
	for _, id := range conv.ParticipantIDs() {
		if id != senderID {
			recipients = append(recipients, id)
		}
	}
	return conv, recipients, nil
}

func (s *MessageService) authorizeDirect(ctx context.Context, senderID, receiverID uuid.UUID) ([]uuid.UUID, error) {
	if senderID == receiverID {
		return nil, policy.CanMessageUser(senderID, receiverID, policy.BlockRelation{})
	}
	if _, err := s.users.FindByID(ctx, receiverID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Receiver not found.")
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}

	rel, err := blockRelation(ctx, s.users, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanMessageUser(senderID, receiverID, rel); err != nil {
		return nil, err
	}
	return []uuid.UUID{receiverID}, nil
}

func (s *MessageService) deliver(senderID uuid.UUID, recipients []uuid.UUID, view *MessageView) {
	if s.notifier == nil {
		return
	}
	// One slow recipient must not hold up the others; each write is
	// bounded by the hub, so waiting here is bounded too.
	var wg sync.WaitGroup
	for _, id := range recipients {
		if id == senderID {
			continue
		}
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			s.notifier.Notify(id, EventNewMessage, view)
		}(id)
	}
	wg.Wait()
}

func (s *MessageService) ListByConversation(ctx context.Context, userID, conversationID uuid.UUID) ([]MessageView, error) {
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Conversation not found")
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.Forbidden("Access denied")
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return s.views(ctx, msgs)
}

// ListByUser returns the legacy direct thread between myID and otherID.
// Only sends are gated by blocks; the read is not.
func (s *MessageService) ListByUser(ctx context.Context, myID, otherID uuid.UUID) ([]MessageView, error) {
	msgs, err := s.messages.ListDirect(ctx, myID, otherID)
	if err != nil {
		return nil, fmt.Errorf("list direct messages: %w", err)
	}
	return s.views(ctx, msgs)
}

func (s *MessageService) ListContacts(ctx context.Context, myID uuid.UUID) ([]UserSummary, error) {
	users, err := s.users.ListExcept(ctx, myID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserSummary(u))
	}
	return out, nil
}

func (s *MessageService) ListChatPartners(ctx context.Context, myID uuid.UUID) ([]UserSummary, error) {
	ids, err := s.messages.DirectPartnerIDs(ctx, myID)
	if err != nil {
		return nil, fmt.Errorf("list chat partners: %w", err)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, NewUserSummary(u))
		}
	}
	return out, nil
}

func (s *MessageService) views(ctx context.Context, msgs []models.Message) ([]MessageView, error) {
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.SenderID)
	}
	users, err := loadUsers(ctx, s.users, dedupe(ids))
	if err != nil {
		return nil, err
	}

	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, newMessageView(m, users.get(m.SenderID)))
	}
	return out, nil
}
