package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/prperemyshlev/identity-sync-service/internal/repository"
)

// adminService implements AdminService interface
type adminService struct {
	userRepo     repository.UserRepository
	userDataRepo repository.UserDataRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo repository.UserRepository, userDataRepo repository.UserDataRepository) AdminService {
	return &adminService{
		userRepo:     userRepo,
		userDataRepo: userDataRepo,
	}
}

// CreateUserData creates credentials for an existing user.
// An unknown user is bad input, not a missing resource.
func (s *adminService) CreateUserData(ctx context.Context, req *dto.CreateUserDataRequest) (*domain.UserData, error) {
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrBadInput, "user with id %s does not exist", req.UserID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.create(ctx, req.UserID, req.CampaignName, req.OutboundID, req.BearerToken)
}

// CreateUserDataByEmail creates credentials for the user with the given email
func (s *adminService) CreateUserDataByEmail(ctx context.Context, req *dto.CreateUserDataByEmailRequest) (*domain.UserData, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrNotFound, "user with email %s not found", req.Email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.create(ctx, user.ID, req.CampaignName, req.OutboundID, req.BearerToken)
}

func (s *adminService) create(ctx context.Context, userID, campaignName, outboundID, bearerToken string) (*domain.UserData, error) {
	data := &domain.UserData{
		UserID:       userID,
		CampaignName: campaignName,
		OutboundID:   outboundID,
		BearerToken:  bearerToken,
	}

	if err := s.userDataRepo.Create(ctx, data); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUserData):
			return nil, NewError(ErrConflict, "user already has data for campaign %s", campaignName)
		case errors.Is(err, repository.ErrUserReference):
			return nil, NewError(ErrBadInput, "user with id %s does not exist", userID)
		}
		return nil, fmt.Errorf("failed to create user data: %w", err)
	}

	return data, nil
}

// ListUserData returns one page of user data
func (s *adminService) ListUserData(ctx context.Context, query dto.UserDataQuery) (*dto.UserDataPage, error) {
	filter := domain.UserDataFilter{
		UserID:       query.UserID,
		CampaignName: query.CampaignName,
		Page:         query.Page,
		Limit:        query.Limit,
		SortBy:       query.SortBy,
		Descending:   query.SortOrder != "asc",
	}

	items, total, err := s.userDataRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list user data: %w", err)
	}

	return &dto.UserDataPage{
		Items: items,
		Page:  query.Page,
		Limit: query.Limit,
		Total: total,
	}, nil
}

// CountUsers returns the number of users
func (s *adminService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// GetUserData returns user data by id
func (s *adminService) GetUserData(ctx context.Context, id string) (*domain.UserData, error) {
	data, err := s.userDataRepo.GetByID(ctx, id)
	if err != nil {
		return nil, userDataLookupError(err, id)
	}
	return data, nil
}

// UpdateUserData applies a partial update
func (s *adminService) UpdateUserData(ctx context.Context, id string, req *dto.UpdateUserDataRequest) (*domain.UserData, error) {
	patch := domain.UserDataPatch{
		CampaignName: req.CampaignName,
		OutboundID:   req.OutboundID,
		BearerToken:  req.BearerToken,
	}

	if patch.IsEmpty() {
		return s.GetUserData(ctx, id)
	}

	data, err := s.userDataRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUserData) {
			return nil, NewError(ErrConflict, "user already has data for this campaign")
		}
		return nil, userDataLookupError(err, id)
	}
	return data, nil
}

// DeleteUserData deletes user data by id
func (s *adminService) DeleteUserData(ctx context.Context, id string) error {
	if err := s.userDataRepo.Delete(ctx, id); err != nil {
		return userDataLookupError(err, id)
	}
	return nil
}

func userDataLookupError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrNotFound, "user data with id %s not found", id)
	}
	return fmt.Errorf("user data %s: %w", id, err)
}
