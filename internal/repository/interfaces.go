package repository

import (
	"context"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByOAuthID(ctx context.Context, oauthID string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateUsername(ctx context.Context, id string, username *string) (*domain.User, error)
	UpdateUsernameByOAuthID(ctx context.Context, oauthID string, username *string) error
	Delete(ctx context.Context, id string) error
	DeleteByOAuthID(ctx context.Context, oauthID string) error
}

// UserDataRepository defines methods for user data operations
type UserDataRepository interface {
	Create(ctx context.Context, data *domain.UserData) error
	GetByID(ctx context.Context, id string) (*domain.UserData, error)
	List(ctx context.Context, filter domain.UserDataFilter) ([]domain.UserData, int64, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.UserData, error)
	Update(ctx context.Context, id string, patch domain.UserDataPatch) (*domain.UserData, error)
	Delete(ctx context.Context, id string) error
}

// Sealer encrypts secrets before they are stored
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
