package models

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	IsGroup      bool       `gorm:"not null;default:false"`
	Name         string     `gorm:"size:255"`
	GroupAdminID *uuid.UUID `gorm:"type:uuid"`
	GroupImage   string     `gorm:"size:512"`

	// DirectKey is set only for one-to-one conversations; the unique index
	// keeps a single conversation per unordered pair.
	DirectKey *string `gorm:"size:80;uniqueIndex"`

	Members []ConversationMember `gorm:"foreignKey:ConversationID"`

	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

type ConversationMember struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Position       int       `gorm:"not null"`
	JoinedAt       time.Time
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DirectKey builds the order-independent key of a one-to-one pair.
func DirectKey(a, b uuid.UUID) string {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}

// ParticipantIDs returns the member ids in join order.
func (c *Conversation) ParticipantIDs() []uuid.UUID {
	members := make([]ConversationMember, len(c.Members))
	copy(members, c.Members)
	sort.SliceStable(members, func(i, j int) bool { return members[i].Position < members[j].Position })

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (c *Conversation) IsAdmin(userID uuid.UUID) bool {
	return c.IsGroup && c.GroupAdminID != nil && *c.GroupAdminID == userID
}

// OtherParticipant returns the member of a one-to-one conversation that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) (uuid.UUID, bool) {
	if c.IsGroup || len(c.Members) != 2 {
		return uuid.Nil, false
	}
	for _, m := range c.Members {
		if m.UserID != userID {
			return m.UserID, true
		}
	}
	return uuid.Nil, false
}
