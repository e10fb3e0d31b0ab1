package repository

import (
	"context"
	"time"

	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func membersInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *GormConversationRepository) FindOrCreateDirect(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	key := models.DirectKey(a, b)

	conv, err := r.findOne(ctx, "direct_key = ?", key)
	if err == nil {
		return conv, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	// A concurrent creator of the same pair makes our insert a no-op; the
	// unique index on direct_key serialises the two transactions.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created := models.Conversation{DirectKey: &key}
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "direct_key"}}, DoNothing: true}).
			Create(&created)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		now := time.Now()
		members := []models.ConversationMember{
			{ConversationID: created.ID, UserID: a, Position: 1, JoinedAt: now},
			{ConversationID: created.ID, UserID: b, Position: 2, JoinedAt: now},
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, "direct_key = ?", key)
}

func (r *GormConversationRepository) CreateGroup(ctx context.Context, conv *models.Conversation, participantIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv.IsGroup = true
		conv.DirectKey = nil
		if err := tx.Omit(clause.Associations).Create(conv).Error; err != nil {
			return err
		}

		now := time.Now()
		members := make([]models.ConversationMember, 0, len(participantIDs))
		for i, id := range participantIDs {
			members = append(members, models.ConversationMember{
				ConversationID: conv.ID,
				UserID:         id,
				Position:       i + 1,
				JoinedAt:       now,
			})
		}
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		conv.Members = members
		return nil
	})
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormConversationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Members", membersInOrder).
		Where(query, args...).
		First(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (r *GormConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Members", membersInOrder).
		Joins("JOIN conversation_members cm ON cm.conversation_id = conversations.id").
		Where("cm.user_id = ?", userID).
		Order("conversations.updated_at desc").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *GormConversationRepository) AddParticipants(ctx context.Context, id uuid.UUID, userIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ?", id).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error
		if err != nil {
			return err
		}

		now := time.Now()
		members := make([]models.ConversationMember, 0, len(userIDs))
		for i, userID := range userIDs {
			members = append(members, models.ConversationMember{
				ConversationID: id,
				UserID:         userID,
				Position:       last + i + 1,
				JoinedAt:       now,
			})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&members).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", id).Update("updated_at", now).Error
	})
}

func (r *GormConversationRepository) RemoveParticipant(ctx context.Context, id, userID uuid.UUID, minMembers int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Concurrent removals from one conversation queue on the row lock, so
		// each sees the members and admin the previous one left behind.
		var conv models.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&conv).Error
		if err != nil {
			return translate(err)
		}
		if err := membersInOrder(tx.Where("conversation_id = ?", id)).Find(&conv.Members).Error; err != nil {
			return err
		}

		if !conv.HasParticipant(userID) {
			return ErrNotFound
		}
		if len(conv.Members)-1 < minMembers {
			return ErrTooFewMembers
		}

		res := tx.Where("conversation_id = ? AND user_id = ?", id, userID).Delete(&models.ConversationMember{})
		if res.Error != nil {
			return res.Error
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if next := policy.NextAdmin(&conv, userID); next != nil {
			updates["group_admin_id"] = *next
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", id).Updates(updates).Error
	})
}

func (r *GormConversationRepository) UpdateGroupInfo(ctx context.Context, id uuid.UUID, name string, image *string) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if name != "" {
		updates["name"] = name
	}
	if image != nil {
		updates["group_image"] = *image
	}

	res := r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormConversationRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Conversation{}).Where("id = ?", id).Update("updated_at", at).Error
}
