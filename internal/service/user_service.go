package service

import (
	"context"
	"fmt"

	"app/internal/model"
	"app/internal/repository"
)

// UserService maps the identity provider's stable external id to an internal
// user row.
type UserService interface {
	// Sync upserts the (email, external id) mapping on first login.
	Sync(ctx context.Context, email, externalUserID string) error
	Get(ctx context.Context, externalUserID string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Sync(ctx context.Context, email, externalUserID string) error {
	if err := s.userRepo.UpsertByEmail(ctx, email, externalUserID); err != nil {
		return fmt.Errorf("syncing user: %w", err)
	}
	return nil
}

func (s *userService) Get(ctx context.Context, externalUserID string) (*model.User, error) {
	u, err := s.userRepo.GetByExternalID(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
