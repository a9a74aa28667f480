package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/pkg/database"
)

const userDataColumns = `id, user_id, campaign_name, outbound_id, bearer_token, created_at, updated_at`

var userDataSortColumns = map[string]string{
	domain.SortByCreatedAt:    "created_at",
	domain.SortByUpdatedAt:    "updated_at",
	domain.SortByOutboundID:   "outbound_id",
	domain.SortByCampaignName: "campaign_name",
}

// userDataRepository implements UserDataRepository interface.
// Bearer tokens are sealed on write and opened on read.
type userDataRepository struct {
	db     *database.Postgres
	sealer Sealer
}

// NewUserDataRepository creates a new user data repository
func NewUserDataRepository(db *database.Postgres, sealer Sealer) UserDataRepository {
	return &userDataRepository{db: db, sealer: sealer}
}

// Create inserts user data for an existing user
func (r *userDataRepository) Create(ctx context.Context, data *domain.UserData) error {
	query := `
		INSERT INTO user_data (id, user_id, campaign_name, outbound_id, bearer_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if data.ID == "" {
		data.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if data.CreatedAt.IsZero() {
		data.CreatedAt = now
	}
	if data.UpdatedAt.IsZero() {
		data.UpdatedAt = now
	}

	sealed, err := r.sealer.Seal(data.BearerToken)
	if err != nil {
		return fmt.Errorf("failed to seal bearer token: %w", err)
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		data.ID,
		data.UserID,
		data.CampaignName,
		data.OutboundID,
		sealed,
		data.CreatedAt,
		data.UpdatedAt,
	)

	if err != nil {
		switch pqCode(err) {
		case pqUniqueViolation:
			return fmt.Errorf("user %s already has data for campaign %s: %w", data.UserID, data.CampaignName, ErrDuplicateUserData)
		case pqForeignKeyViolation, pqInvalidText:
			return fmt.Errorf("user %s: %w", data.UserID, ErrUserReference)
		}
		return fmt.Errorf("failed to create user data: %w", err)
	}

	return nil
}

// GetByID retrieves user data by ID
func (r *userDataRepository) GetByID(ctx context.Context, id string) (*domain.UserData, error) {
	query := `SELECT ` + userDataColumns + ` FROM user_data WHERE id = $1`

	data := &domain.UserData{}
	if err := r.db.DB.GetContext(ctx, data, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
			return nil, fmt.Errorf("user data with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user data: %w", err)
	}

	if err := r.open(data); err != nil {
		return nil, err
	}

	return data, nil
}

// List returns one page of user data matching the filter and the total number of matches
func (r *userDataRepository) List(ctx context.Context, filter domain.UserDataFilter) ([]domain.UserData, int64, error) {
	where, args := userDataWhere(filter)

	var total int64
	if err := r.db.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM user_data`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count user data: %w", err)
	}

	query := `SELECT ` + userDataColumns + ` FROM user_data` + where + userDataOrderBy(filter) +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	items := []domain.UserData{}
	if err := r.db.DB.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list user data: %w", err)
	}

	for i := range items {
		if err := r.open(&items[i]); err != nil {
			return nil, 0, err
		}
	}

	return items, total, nil
}

// ListByUserID returns all user data of a user, newest first
func (r *userDataRepository) ListByUserID(ctx context.Context, userID string) ([]domain.UserData, error) {
	query := `SELECT ` + userDataColumns + ` FROM user_data WHERE user_id = $1 ORDER BY created_at DESC`

	items := []domain.UserData{}
	if err := r.db.DB.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user data by user id: %w", err)
	}

	for i := range items {
		if err := r.open(&items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// Update applies a partial update and returns the updated record
func (r *userDataRepository) Update(ctx context.Context, id string, patch domain.UserDataPatch) (*domain.UserData, error) {
	query := `
		UPDATE user_data
		SET campaign_name = COALESCE($2, campaign_name),
		    outbound_id = COALESCE($3, outbound_id),
		    bearer_token = COALESCE($4, bearer_token),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userDataColumns

	var sealed *string
	if patch.BearerToken != nil {
		s, err := r.sealer.Seal(*patch.BearerToken)
		if err != nil {
			return nil, fmt.Errorf("failed to seal bearer token: %w", err)
		}
		sealed = &s
	}

	data := &domain.UserData{}
	err := r.db.DB.GetContext(ctx, data, query, id, patch.CampaignName, patch.OutboundID, sealed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || pqCode(err) == pqInvalidText {
			return nil, fmt.Errorf("user data with id %s not found: %w", id, ErrNotFound)
		}
		if pqCode(err) == pqUniqueViolation {
			return nil, fmt.Errorf("user data %s: %w", id, ErrDuplicateUserData)
		}
		return nil, fmt.Errorf("failed to update user data: %w", err)
	}

	if err := r.open(data); err != nil {
		return nil, err
	}

	return data, nil
}

// Delete deletes user data by ID
func (r *userDataRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM user_data WHERE id = $1`, id)
	if err != nil {
		if pqCode(err) == pqInvalidText {
			return fmt.Errorf("user data with id %s not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete user data: %w", err)
	}

	return expectAffected(result, "user data with id "+id)
}

func (r *userDataRepository) open(data *domain.UserData) error {
	plain, err := r.sealer.Open(data.BearerToken)
	if err != nil {
		return fmt.Errorf("failed to open bearer token of user data %s: %w", data.ID, err)
	}
	data.BearerToken = plain
	return nil
}

func userDataWhere(filter domain.UserDataFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if filter.CampaignName != "" {
		args = append(args, "%"+escapeLike(filter.CampaignName)+"%")
		conditions = append(conditions, fmt.Sprintf("campaign_name ILIKE $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func userDataOrderBy(filter domain.UserDataFilter) string {
	column, ok := userDataSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
