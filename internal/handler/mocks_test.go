package handler

import (
	"context"
	"sync"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/prperemyshlev/identity-sync-service/internal/dto"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claims), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) GetByOAuthID(ctx context.Context, oauthID string) (*domain.User, error) {
	args := m.Called(ctx, oauthID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserService) UserDataByEmail(ctx context.Context, email string) ([]domain.UserData, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserData), args.Error(1)
}

type mockAdminService struct {
	mock.Mock
}

func (m *mockAdminService) CreateUserData(ctx context.Context, req *dto.CreateUserDataRequest) (*domain.UserData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserData), args.Error(1)
}

func (m *mockAdminService) CreateUserDataByEmail(ctx context.Context, req *dto.CreateUserDataByEmailRequest) (*domain.UserData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserData), args.Error(1)
}

func (m *mockAdminService) ListUserData(ctx context.Context, query dto.UserDataQuery) (*dto.UserDataPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserDataPage), args.Error(1)
}

func (m *mockAdminService) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAdminService) GetUserData(ctx context.Context, id string) (*domain.UserData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserData), args.Error(1)
}

func (m *mockAdminService) UpdateUserData(ctx context.Context, id string, req *dto.UpdateUserDataRequest) (*domain.UserData, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserData), args.Error(1)
}

func (m *mockAdminService) DeleteUserData(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSynchronizer struct {
	mock.Mock
}

func (m *mockSynchronizer) CreateFromProvider(ctx context.Context, oauthID, email string, username *string) (domain.SyncOutcome, error) {
	args := m.Called(ctx, oauthID, email, username)
	return args.Get(0).(domain.SyncOutcome), args.Error(1)
}

func (m *mockSynchronizer) UpdateFromProvider(ctx context.Context, oauthID string, username *string) (domain.SyncOutcome, error) {
	args := m.Called(ctx, oauthID, username)
	return args.Get(0).(domain.SyncOutcome), args.Error(1)
}

func (m *mockSynchronizer) DeleteFromProvider(ctx context.Context, oauthID string) (domain.SyncOutcome, error) {
	args := m.Called(ctx, oauthID)
	return args.Get(0).(domain.SyncOutcome), args.Error(1)
}

type memoryLedger struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{seen: make(map[string]bool)}
}

func (l *memoryLedger) IsProcessed(_ context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	return l.seen[id], nil
}

func (l *memoryLedger) MarkProcessed(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.seen[id] = true
	return nil
}
