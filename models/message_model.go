package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs either to a conversation or, on the legacy direct path, to a receiver.
type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	ConversationID *uuid.UUID `gorm:"type:uuid;index:idx_messages_conversation_created"`
	ReceiverID     *uuid.UUID `gorm:"type:uuid;index"`
	Text           string     `gorm:"type:text"`
	Image          string     `gorm:"size:1024"`

	CreatedAt time.Time `gorm:"index:idx_messages_conversation_created"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
