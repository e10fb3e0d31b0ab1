package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/anjiri1684/chat_backend/models"
	"github.com/anjiri1684/chat_backend/repository"
	"github.com/google/uuid"
)

// UpdateProfileInput carries optional changes; nil and blank fields are left as they are.
type UpdateProfileInput struct {
	FullName   *string
	Profession *string
	ProfilePic *string
}

type ProfileService struct {
	users    repository.UserRepository
	uploader ImageUploader
}

func NewProfileService(users repository.UserRepository, uploader ImageUploader) *ProfileService {
	return &ProfileService{users: users, uploader: uploader}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*UserSummary, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := NewUserSummary(*user)
	return &summary, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*UserSummary, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := trimmed(in.FullName); v != "" {
		user.FullName = v
	}
	if v := trimmed(in.Profession); v != "" {
		user.Profession = v
	}
	if pic := trimmed(in.ProfilePic); pic != "" {
		if s.uploader != nil {
			if pic, err = s.uploader.Upload(ctx, pic); err != nil {
				if apperrors.KindOf(err) != apperrors.KindInternal {
					return nil, err
				}
				return nil, fmt.Errorf("upload profile picture: %w", err)
			}
		}
		user.ProfilePic = pic
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	summary := NewUserSummary(*user)
	return &summary, nil
}

func (s *ProfileService) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
