// Package repository holds the stores behind the chat services: users and
// their block lists, conversations with their members, and messages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/chat_backend/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrTooFewMembers = errors.New("too few members")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	ListExcept(ctx context.Context, id uuid.UUID) ([]models.User, error)
	// UpdateProfile saves the display fields of user: full name, profession and picture.
	UpdateProfile(ctx context.Context, user *models.User) error

	// BlockedIDs lists who userID has blocked, oldest block first.
	BlockedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	HasBlocked(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
	AddBlock(ctx context.Context, userID, blockedID uuid.UUID) error
	RemoveBlock(ctx context.Context, userID, blockedID uuid.UUID) error
}

type ConversationRepository interface {
	// FindOrCreateDirect returns the one-to-one conversation of the pair,
	// creating it with participants [a, b] when absent. Safe under concurrent callers.
	FindOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	CreateGroup(ctx context.Context, conv *models.Conversation, participantIDs []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	// ListForUser returns the conversations userID belongs to, most recently updated first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	AddParticipants(ctx context.Context, id uuid.UUID, userIDs []uuid.UUID) error
	// RemoveParticipant drops userID unless that leaves fewer than minMembers
	// (ErrTooFewMembers). When userID is the admin, the role passes to the
	// first remaining member. The checks run against the stored row, not a
	// caller snapshot.
	RemoveParticipant(ctx context.Context, id, userID uuid.UUID, minMembers int) error
	UpdateGroupInfo(ctx context.Context, id uuid.UUID, name string, image *string) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	// LastInConversation returns ErrNotFound for an empty conversation.
	LastInConversation(ctx context.Context, conversationID uuid.UUID) (*models.Message, error)
	// ListDirect returns the legacy direct messages exchanged by a and b, oldest first.
	ListDirect(ctx context.Context, a, b uuid.UUID) ([]models.Message, error)
	// DirectPartnerIDs lists everyone userID has exchanged a legacy direct message with.
	DirectPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
