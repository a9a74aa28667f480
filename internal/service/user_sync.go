package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/repository"
	"go.uber.org/zap"
)

// UserSynchronizer applies identity provider lifecycle events to the user store.
// Redeliveries and out-of-order deliveries are expected, so duplicates and
// missing targets are reported as outcomes rather than errors.
type UserSynchronizer struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

// NewUserSynchronizer creates a new user synchronizer
func NewUserSynchronizer(userRepo repository.UserRepository, logger *zap.Logger) *UserSynchronizer {
	return &UserSynchronizer{
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateFromProvider creates the user unless one with the same oauth id or email exists
func (s *UserSynchronizer) CreateFromProvider(ctx context.Context, oauthID, email string, username *string) (domain.SyncOutcome, error) {
	user := &domain.User{
		Email:    email,
		OAuthID:  oauthID,
		Username: username,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			s.logger.Info("User already synchronized", zap.String("oauth_id", oauthID))
			return domain.SyncAlreadySynced, nil
		}
		return "", fmt.Errorf("failed to create user from provider: %w", err)
	}

	s.logger.Info("User created from provider", zap.String("oauth_id", oauthID), zap.String("user_id", user.ID))
	return domain.SyncCreated, nil
}

// UpdateFromProvider updates the user with the given oauth id.
// Without updatable fields nothing is written.
func (s *UserSynchronizer) UpdateFromProvider(ctx context.Context, oauthID string, username *string) (domain.SyncOutcome, error) {
	if username == nil {
		return domain.SyncNoop, nil
	}

	if err := s.userRepo.UpdateUsernameByOAuthID(ctx, oauthID, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("User to update not found, ignoring", zap.String("oauth_id", oauthID))
			return domain.SyncMissing, nil
		}
		return "", fmt.Errorf("failed to update user from provider: %w", err)
	}

	s.logger.Info("User updated from provider", zap.String("oauth_id", oauthID))
	return domain.SyncUpdated, nil
}

// DeleteFromProvider deletes the user with the given oauth id and its user data
func (s *UserSynchronizer) DeleteFromProvider(ctx context.Context, oauthID string) (domain.SyncOutcome, error) {
	if err := s.userRepo.DeleteByOAuthID(ctx, oauthID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("User to delete not found, ignoring", zap.String("oauth_id", oauthID))
			return domain.SyncMissing, nil
		}
		return "", fmt.Errorf("failed to delete user from provider: %w", err)
	}

	s.logger.Info("User deleted from provider", zap.String("oauth_id", oauthID))
	return domain.SyncDeleted, nil
}
