package service

import (
	"context"
	"fmt"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateSettingsInput struct {
	UserID         uint
	Bio            string
	Avatar         string
	PrivateProfile bool
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func profileCacheKey(id uint) string {
	return fmt.Sprintf("user:profile:%d", id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// GetUserByID reads a profile through the cache. Stale privacy flags are
// harmless here because visibility checks always hit the database.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.CacheAside(ctx, profileCacheKey(id), &user, profileCacheTTL, func() error {
		u, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateSettings writes the caller's bio, avatar and profile privacy.
// Flipping PrivateProfile from true to false does not touch pending
// requests; they convert lazily the next time the requester calls
// Follow or Status.
func (s *UserService) UpdateSettings(ctx context.Context, in UpdateSettingsInput) (*models.User, error) {
	const maxBioLen = 500

	if len(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}

	if err := s.userRepo.UpdateSettings(ctx, in.UserID, in.Bio, in.Avatar, in.PrivateProfile); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, profileCacheKey(in.UserID))

	return s.userRepo.GetByID(ctx, in.UserID)
}
