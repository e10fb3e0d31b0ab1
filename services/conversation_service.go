package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/policy"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
)

const minGroupMembers = 2

type CreateGroupInput struct {
	Name           string
	ParticipantIDs []uuid.UUID
	GroupImage     string
}

// UpdateGroupInput carries optional fields; nil leaves the field untouched.
type UpdateGroupInput struct {
	Name       *string
	GroupImage *string
}

type ConversationService struct {
	users    repository.UserRepository
	convs    repository.ConversationRepository
	messages repository.MessageRepository
}

func NewConversationService(users repository.UserRepository, convs repository.ConversationRepository, messages repository.MessageRepository) *ConversationService {
	return &ConversationService{users: users, convs: convs, messages: messages}
}

func (s *ConversationService) GetOrCreateOneToOne(ctx context.Context, requesterID, otherID uuid.UUID) (*ConversationView, error) {
	if requesterID == otherID {
		return nil, apperrors.InvalidArgument("Cannot create conversation with yourself")
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	conv, err := s.convs.FindOrCreateDirect(ctx, requesterID, otherID)
	if err != nil {
		return nil, fmt.Errorf("find or create conversation: %w", err)
	}
	return s.view(ctx, conv)
}

func (s *ConversationService) CreateGroup(ctx context.Context, creatorID uuid.UUID, in CreateGroupInput) (*ConversationView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.InvalidArgument("Group name is required")
	}
	if len(in.ParticipantIDs) == 0 {
		return nil, apperrors.InvalidArgument("At least one participant is required")
	}

	participants := dedupe(append([]uuid.UUID{creatorID}, in.ParticipantIDs...))
	if len(participants) < minGroupMembers {
		return nil, apperrors.InvalidArgument("At least one other participant is required")
	}
	if err := s.requireUsers(ctx, participants); err != nil {
		return nil, err
	}

	admin := creatorID
	conv := &models.Conversation{
		Name:         name,
		IsGroup:      true,
		GroupAdminID: &admin,
		GroupImage:   in.GroupImage,
	}
	if err := s.convs.CreateGroup(ctx, conv, participants); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return s.reload(ctx, conv.ID)
}

func (s *ConversationService) ListMine(ctx context.Context, userID uuid.UUID) ([]ConversationView, error) {
	convs, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	lasts := make([]*models.Message, len(convs))
	var ids []uuid.UUID
	for i := range convs {
		ids = append(ids, convs[i].ParticipantIDs()...)
		if convs[i].GroupAdminID != nil {
			ids = append(ids, *convs[i].GroupAdminID)
		}

		last, err := s.messages.LastInConversation(ctx, convs[i].ID)
		switch {
		case err == nil:
			lasts[i] = last
			ids = append(ids, last.SenderID)
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, fmt.Errorf("last message: %w", err)
		}
	}

	users, err := loadUsers(ctx, s.users, dedupe(ids))
	if err != nil {
		return nil, err
	}

	out := make([]ConversationView, 0, len(convs))
	for i := range convs {
		view := newConversationView(&convs[i], users)
		if lasts[i] != nil {
			msg := newMessageView(*lasts[i], users.get(lasts[i].SenderID))
			view.LastMessage = &msg
		}
		if other, ok := convs[i].OtherParticipant(userID); ok {
			summary := NewUserSummary(users.get(other))
			view.OtherParticipant = &summary
		}
		out = append(out, view)
	}
	return out, nil
}

// GetByID hides conversations the caller is not a member of behind NotFound.
func (s *ConversationService) GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationView, error) {
	conv, err := s.find(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, apperrors.NotFound("Conversation not found")
	}
	return s.view(ctx, conv)
}

func (s *ConversationService) AddParticipants(ctx context.Context, actorID, conversationID uuid.UUID, participantIDs []uuid.UUID) (*ConversationView, error) {
	if len(participantIDs) == 0 {
		return nil, apperrors.InvalidArgument("At least one participant is required")
	}

	conv, err := s.find(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAddParticipants(actorID, conv); err != nil {
		return nil, err
	}

	requested := dedupe(participantIDs)
	if err := s.requireUsers(ctx, requested); err != nil {
		return nil, err
	}

	var fresh []uuid.UUID
	for _, id := range requested {
		if !conv.HasParticipant(id) {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return nil, apperrors.Conflict("All participants are already in the group")
	}

	if err := s.convs.AddParticipants(ctx, conv.ID, fresh); err != nil {
		return nil, fmt.Errorf("add participants: %w", err)
	}
	return s.reload(ctx, conv.ID)
}

func (s *ConversationService) RemoveParticipant(ctx context.Context, actorID, conversationID, targetID uuid.UUID) (*ConversationView, error) {
	if targetID == uuid.Nil {
		return nil, apperrors.InvalidArgument("Participant ID is required")
	}

	conv, err := s.find(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanRemoveParticipant(actorID, targetID, conv); err != nil {
		return nil, err
	}

	// The store re-reads the group under lock before deciding.
	switch err := s.convs.RemoveParticipant(ctx, conv.ID, targetID, minGroupMembers); {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NotFound("Participant not found in group")
	case errors.Is(err, repository.ErrTooFewMembers):
		return nil, apperrors.Conflict("Group must have at least 2 participants")
	default:
		return nil, fmt.Errorf("remove participant: %w", err)
	}
	return s.reload(ctx, conv.ID)
}

// UpdateGroupInfo ignores a blank name; a provided image always overwrites, even when empty.
func (s *ConversationService) UpdateGroupInfo(ctx context.Context, actorID, conversationID uuid.UUID, in UpdateGroupInput) (*ConversationView, error) {
	conv, err := s.find(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanManageGroup(actorID, conv); err != nil {
		return nil, err
	}

	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
	}
	if err := s.convs.UpdateGroupInfo(ctx, conv.ID, name, in.GroupImage); err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return s.reload(ctx, conv.ID)
}

func (s *ConversationService) find(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Conversation not found")
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return conv, nil
}

func (s *ConversationService) reload(ctx context.Context, id uuid.UUID) (*ConversationView, error) {
	conv, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, conv)
}

func (s *ConversationService) view(ctx context.Context, conv *models.Conversation) (*ConversationView, error) {
	ids := conv.ParticipantIDs()
	if conv.GroupAdminID != nil {
		ids = append(ids, *conv.GroupAdminID)
	}
	users, err := loadUsers(ctx, s.users, dedupe(ids))
	if err != nil {
		return nil, err
	}
	view := newConversationView(conv, users)
	return &view, nil
}

func (s *ConversationService) requireUsers(ctx context.Context, ids []uuid.UUID) error {
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return apperrors.InvalidArgument("Some participants not found")
		}
	}
	return nil
}
