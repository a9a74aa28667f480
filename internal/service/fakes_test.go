package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/repository"
)

// memoryStore backs both fake repositories so cascading deletes behave like Postgres
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]domain.User
	userData map[string]domain.UserData
	writes   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]domain.User),
		userData: make(map[string]domain.UserData),
	}
}

type fakeUserRepo struct{ s *memoryStore }

type fakeUserDataRepo struct{ s *memoryStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.OAuthID == user.OAuthID {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateUser)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	r.s.writes++
	return nil
}

func (r *fakeUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByOAuthID(_ context.Context, oauthID string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.OAuthID == oauthID })
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.users)), nil
}

func (r *fakeUserRepo) UpdateUsername(_ context.Context, id string, username *string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	u.Username = username
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u
	r.s.writes++
	return &u, nil
}

func (r *fakeUserRepo) UpdateUsernameByOAuthID(ctx context.Context, oauthID string, username *string) error {
	u, err := r.GetByOAuthID(ctx, oauthID)
	if err != nil {
		return err
	}
	_, err = r.UpdateUsername(ctx, u.ID, username)
	return err
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("user: %w", repository.ErrNotFound)
	}
	delete(r.s.users, id)
	for dataID, d := range r.s.userData {
		if d.UserID == id {
			delete(r.s.userData, dataID)
		}
	}
	r.s.writes++
	return nil
}

func (r *fakeUserRepo) DeleteByOAuthID(ctx context.Context, oauthID string) error {
	u, err := r.GetByOAuthID(ctx, oauthID)
	if err != nil {
		return err
	}
	return r.Delete(ctx, u.ID)
}

func (r *fakeUserDataRepo) Create(_ context.Context, data *domain.UserData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[data.UserID]; !ok {
		return fmt.Errorf("user data: %w", repository.ErrUserReference)
	}
	for _, d := range r.s.userData {
		if d.UserID == data.UserID && d.CampaignName == data.CampaignName {
			return fmt.Errorf("user data: %w", repository.ErrDuplicateUserData)
		}
	}
	if data.ID == "" {
		data.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	data.CreatedAt, data.UpdatedAt = now, now
	r.s.userData[data.ID] = *data
	r.s.writes++
	return nil
}

func (r *fakeUserDataRepo) GetByID(_ context.Context, id string) (*domain.UserData, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.userData[id]
	if !ok {
		return nil, fmt.Errorf("user data: %w", repository.ErrNotFound)
	}
	return &d, nil
}

func (r *fakeUserDataRepo) List(_ context.Context, filter domain.UserDataFilter) ([]domain.UserData, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var items []domain.UserData
	for _, d := range r.s.userData {
		if filter.UserID != "" && d.UserID != filter.UserID {
			continue
		}
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CampaignName < items[j].CampaignName })

	total := int64(len(items))
	start := filter.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + filter.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], total, nil
}

func (r *fakeUserDataRepo) ListByUserID(_ context.Context, userID string) ([]domain.UserData, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	items := []domain.UserData{}
	for _, d := range r.s.userData {
		if d.UserID == userID {
			items = append(items, d)
		}
	}
	return items, nil
}

func (r *fakeUserDataRepo) Update(_ context.Context, id string, patch domain.UserDataPatch) (*domain.UserData, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.userData[id]
	if !ok {
		return nil, fmt.Errorf("user data: %w", repository.ErrNotFound)
	}
	if patch.CampaignName != nil {
		for otherID, other := range r.s.userData {
			if otherID != id && other.UserID == d.UserID && other.CampaignName == *patch.CampaignName {
				return nil, fmt.Errorf("user data: %w", repository.ErrDuplicateUserData)
			}
		}
		d.CampaignName = *patch.CampaignName
	}
	if patch.OutboundID != nil {
		d.OutboundID = *patch.OutboundID
	}
	if patch.BearerToken != nil {
		d.BearerToken = *patch.BearerToken
	}
	r.s.userData[id] = d
	r.s.writes++
	return &d, nil
}

func (r *fakeUserDataRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.userData[id]; !ok {
		return fmt.Errorf("user data: %w", repository.ErrNotFound)
	}
	delete(r.s.userData, id)
	r.s.writes++
	return nil
}

func strPtr(s string) *string { return &s }
