package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
)

type BlockStatus struct {
	IsBlocked    bool `json:"is_blocked"`
	HasBlockedUs bool `json:"has_blocked_us"`
	Blocked      bool `json:"blocked"`
}

type BlockService struct {
	users repository.UserRepository
}

func NewBlockService(users repository.UserRepository) *BlockService {
	return &BlockService{users: users}
}

// Block adds targetID to actorID's block list and returns the updated list.
func (s *BlockService) Block(ctx context.Context, actorID, targetID uuid.UUID) ([]uuid.UUID, error) {
	if actorID == targetID {
		return nil, apperrors.InvalidArgument("Cannot block yourself")
	}
	if err := s.requireUser(ctx, targetID); err != nil {
		return nil, err
	}

	already, err := s.users.HasBlocked(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if already {
		return nil, apperrors.Conflict("User is already blocked")
	}

	if err := s.users.AddBlock(ctx, actorID, targetID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("User is already blocked")
		}
		return nil, fmt.Errorf("add block: %w", err)
	}

	return s.blockedIDs(ctx, actorID)
}

func (s *BlockService) Unblock(ctx context.Context, actorID, targetID uuid.UUID) ([]uuid.UUID, error) {
	if err := s.users.RemoveBlock(ctx, actorID, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Conflict("User is not blocked")
		}
		return nil, fmt.Errorf("remove block: %w", err)
	}

	return s.blockedIDs(ctx, actorID)
}

func (s *BlockService) ListBlocked(ctx context.Context, actorID uuid.UUID) ([]UserSummary, error) {
	ids, err := s.blockedIDs(ctx, actorID)
	if err != nil {
		return nil, err
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

func (s *BlockService) Status(ctx context.Context, actorID, targetID uuid.UUID) (BlockStatus, error) {
	if err := s.requireUser(ctx, targetID); err != nil {
		return BlockStatus{}, err
	}

	rel, err := blockRelation(ctx, s.users, actorID, targetID)
	if err != nil {
		return BlockStatus{}, err
	}
	return BlockStatus{
		IsBlocked:    rel.SenderBlocksOther,
		HasBlockedUs: rel.OtherBlocksSender,
		Blocked:      rel.Any(),
	}, nil
}

func (s *BlockService) blockedIDs(ctx context.Context, actorID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.users.BlockedIDs(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return ids, nil
}

func (s *BlockService) requireUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("User not found")
		}
		return fmt.Errorf("find user: %w", err)
	}
	return nil
}
