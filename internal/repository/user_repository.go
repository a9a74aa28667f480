package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/pkg/database"
)

const userColumns = `id, email, oauth_id, username, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a user; a unique violation on email or oauth id yields ErrDuplicateUser
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, oauth_id, username, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.OAuthID,
		user.Username,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqCode(err) == pqUniqueViolation {
			return fmt.Errorf("user with email %s or oauth id %s already exists: %w", user.Email, user.OAuthID, ErrDuplicateUser)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "id", id)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", email)
}

// GetByOAuthID retrieves a user by the identity provider subject id
func (r *userRepository) GetByOAuthID(ctx context.Context, oauthID string) (*domain.User, error) {
	return r.getOne(ctx, "oauth_id", oauthID)
}

// column is always one of the constants passed by the getters above
func (r *userRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user := &domain.User{}
	if err := r.db.DB.GetContext(ctx, user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
			return nil, fmt.Errorf("user with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

// List returns all users, newest first
func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	users := []domain.User{}
	if err := r.db.DB.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Count returns the number of users
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// UpdateUsername sets the username of a user and returns the updated record
func (r *userRepository) UpdateUsername(ctx context.Context, id string, username *string) (*domain.User, error) {
	query := `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user := &domain.User{}
	if err := r.db.DB.GetContext(ctx, user, query, id, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdateUsernameByOAuthID sets the username of the user with the given oauth id
func (r *userRepository) UpdateUsernameByOAuthID(ctx context.Context, oauthID string, username *string) error {
	query := `
		UPDATE users
		SET username = $2, updated_at = NOW()
		WHERE oauth_id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, oauthID, username)
	if err != nil {
		return fmt.Errorf("failed to update user by oauth id: %w", err)
	}

	return expectAffected(result, "user with oauth id "+oauthID)
}

// Delete deletes a user by ID; user data is removed by the cascading foreign key
func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqInvalidText {
			return fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectAffected(result, "user with id "+id)
}

// DeleteByOAuthID deletes the user with the given oauth id
func (r *userRepository) DeleteByOAuthID(ctx context.Context, oauthID string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM users WHERE oauth_id = $1`, oauthID)
	if err != nil {
		return fmt.Errorf("failed to delete user by oauth id: %w", err)
	}

	return expectAffected(result, "user with oauth id "+oauthID)
}

func expectAffected(result sql.Result, subject string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", subject, ErrNotFound)
	}

	return nil
}
