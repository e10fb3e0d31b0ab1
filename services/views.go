package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/policy"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
)

type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Profession string    `json:"profession"`
	ProfilePic string    `json:"profile_pic"`
}

type SenderSummary struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	ProfilePic string    `json:"profile_pic"`
}

type MessageView struct {
	ID             uuid.UUID     `json:"id"`
	SenderID       uuid.UUID     `json:"sender_id"`
	Sender         SenderSummary `json:"sender"`
	ConversationID *uuid.UUID    `json:"conversation_id,omitempty"`
	ReceiverID     *uuid.UUID    `json:"receiver_id,omitempty"`
	Text           string        `json:"text,omitempty"`
	Image          string        `json:"image,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

type ConversationView struct {
	ID               uuid.UUID     `json:"id"`
	IsGroup          bool          `json:"is_group"`
	Name             string        `json:"name"`
	Participants     []UserSummary `json:"participants"`
	GroupAdmin       *UserSummary  `json:"group_admin,omitempty"`
	GroupImage       string        `json:"group_image"`
	LastMessage      *MessageView  `json:"last_message,omitempty"`
	OtherParticipant *UserSummary  `json:"other_participant,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func NewUserSummary(u models.User) UserSummary {
	return UserSummary{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Profession: u.Profession,
		ProfilePic: u.ProfilePic,
	}
}

func newSenderSummary(u models.User) SenderSummary {
	return SenderSummary{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}

// userSet is a batch of resolved profiles keyed by id.
type userSet map[uuid.UUID]models.User

func loadUsers(ctx context.Context, users repository.UserRepository, ids []uuid.UUID) (userSet, error) {
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	set := make(userSet, len(found))
	for _, u := range found {
		set[u.ID] = u
	}
	return set, nil
}

// get falls back to a bare id for users that no longer resolve.
func (s userSet) get(id uuid.UUID) models.User {
	if u, ok := s[id]; ok {
		return u
	}
	return models.User{ID: id}
}

func (s userSet) summaries(ids []uuid.UUID) []UserSummary {
	out := make([]UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewUserSummary(s.get(id)))
	}
	return out
}

func newMessageView(m models.Message, sender models.User) MessageView {
	return MessageView{
		ID:             m.ID,
		SenderID:       m.SenderID,
		Sender:         newSenderSummary(sender),
		ConversationID: m.ConversationID,
		ReceiverID:     m.ReceiverID,
		Text:           m.Text,
		Image:          m.Image,
		CreatedAt:      m.CreatedAt,
	}
}

func newConversationView(conv *models.Conversation, users userSet) ConversationView {
	view := ConversationView{
		ID:           conv.ID,
		IsGroup:      conv.IsGroup,
		Name:         conv.Name,
		Participants: users.summaries(conv.ParticipantIDs()),
		GroupImage:   conv.GroupImage,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
	}
	if conv.GroupAdminID != nil {
		admin := NewUserSummary(users.get(*conv.GroupAdminID))
		view.GroupAdmin = &admin
	}
	return view
}

func blockRelation(ctx context.Context, users repository.UserRepository, senderID, otherID uuid.UUID) (policy.BlockRelation, error) {
	var rel policy.BlockRelation
	var err error

	if rel.SenderBlocksOther, err = users.HasBlocked(ctx, senderID, otherID); err != nil {
		return rel, fmt.Errorf("check block: %w", err)
	}
	if rel.OtherBlocksSender, err = users.HasBlocked(ctx, otherID, senderID); err != nil {
		return rel, fmt.Errorf("check block: %w", err)
	}
	return rel, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
