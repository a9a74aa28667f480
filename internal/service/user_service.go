package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/repository"
)

// userService implements UserService interface
type userService struct {
	userRepo     repository.UserRepository
	userDataRepo repository.UserDataRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, userDataRepo repository.UserDataRepository) UserService {
	return &userService{
		userRepo:     userRepo,
		userDataRepo: userDataRepo,
	}
}

// Create creates a user; an existing email or oauth id is a conflict
func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error) {
	user := &domain.User{
		Email:    req.Email,
		OAuthID:  req.OAuthID,
		Username: req.Username,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, NewError(ErrConflict, "user with this email or oauth id already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// List returns all users, newest first
func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get returns a user by id
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// GetByOAuthID returns the user mirrored from the given provider subject
func (s *userService) GetByOAuthID(ctx context.Context, oauthID string) (*domain.User, error) {
	user, err := s.userRepo.GetByOAuthID(ctx, oauthID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrNotFound, "user has not been synchronized yet")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update changes the username; a request without fields returns the user unchanged
func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error) {
	if req.Username == nil {
		return s.Get(ctx, id)
	}

	user, err := s.userRepo.UpdateUsername(ctx, id, req.Username)
	if err != nil {
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// Delete deletes a user together with its user data
func (s *userService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return userLookupError(err, id)
	}
	return nil
}

// UserDataByEmail returns the user data of the user with the given email
func (s *userService) UserDataByEmail(ctx context.Context, email string) ([]domain.UserData, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrNotFound, "user with email %s not found", email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	data, err := s.userDataRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user data: %w", err)
	}
	return data, nil
}

func userLookupError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrNotFound, "user with id %s not found", id)
	}
	return fmt.Errorf("user %s: %w", id, err)
}
