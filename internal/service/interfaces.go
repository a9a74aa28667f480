package service

import (
	"context"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
)

// UserService defines direct API operations on users
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByOAuthID(ctx context.Context, oauthID string) (*domain.User, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	UserDataByEmail(ctx context.Context, email string) ([]domain.UserData, error)
}

// AdminService defines administrative operations on user data
type AdminService interface {
	CreateUserData(ctx context.Context, req *dto.CreateUserDataRequest) (*domain.UserData, error)
	CreateUserDataByEmail(ctx context.Context, req *dto.CreateUserDataByEmailRequest) (*domain.UserData, error)
	ListUserData(ctx context.Context, query dto.UserDataQuery) (*dto.UserDataPage, error)
	CountUsers(ctx context.Context) (int64, error)
	GetUserData(ctx context.Context, id string) (*domain.UserData, error)
	UpdateUserData(ctx context.Context, id string, req *dto.UpdateUserDataRequest) (*domain.UserData, error)
	DeleteUserData(ctx context.Context, id string) error
}
