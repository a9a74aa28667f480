package service

import (
	"context"
	"testing"

	"github.com/prperemyshlev/identity-sync-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSyncFixture() (*UserSynchronizer, *memoryStore) {
	store := newMemoryStore()
	return NewUserSynchronizer(&fakeUserRepo{store}, zap.NewNop()), store
}

func TestUserSynchronizer_CreateIsIdempotent(t *testing.T) {
	sync, store := newSyncFixture()
	ctx := context.Background()

	outcome, err := sync.CreateFromProvider(ctx, "ext_9", "a@b.com", strPtr("alice"))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCreated, outcome)

	outcome, err = sync.CreateFromProvider(ctx, "ext_9", "a@b.com", strPtr("alice"))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncAlreadySynced, outcome)

	require.Len(t, store.users, 1)
	for _, u := range store.users {
		assert.Equal(t, "ext_9", u.OAuthID)
		assert.Equal(t, "a@b.com", u.Email)
		assert.Equal(t, "alice", *u.Username)
	}
}

func TestUserSynchronizer_CreateWithTakenEmail(t *testing.T) {
	sync, store := newSyncFixture()
	ctx := context.Background()

	_, err := sync.CreateFromProvider(ctx, "ext_1", "a@b.com", nil)
	require.NoError(t, err)

	outcome, err := sync.CreateFromProvider(ctx, "ext_2", "a@b.com", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncAlreadySynced, outcome)
	assert.Len(t, store.users, 1)
}

func TestUserSynchronizer_Update(t *testing.T) {
	sync, store := newSyncFixture()
	ctx := context.Background()

	outcome, err := sync.UpdateFromProvider(ctx, "ext_1", strPtr("bob"))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncMissing, outcome)
	assert.Empty(t, store.users)

	_, err = sync.CreateFromProvider(ctx, "ext_1", "a@b.com", nil)
	require.NoError(t, err)
	writes := store.writes

	outcome, err = sync.UpdateFromProvider(ctx, "ext_1", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncNoop, outcome)
	assert.Equal(t, writes, store.writes)

	outcome, err = sync.UpdateFromProvider(ctx, "ext_1", strPtr("bob"))
	require.NoError(t, err)
	assert.Equal(t, domain.SyncUpdated, outcome)
}

func TestUserSynchronizer_DeleteIsIdempotent(t *testing.T) {
	sync, store := newSyncFixture()
	ctx := context.Background()

	_, err := sync.CreateFromProvider(ctx, "ext_1", "a@b.com", nil)
	require.NoError(t, err)

	outcome, err := sync.DeleteFromProvider(ctx, "ext_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncDeleted, outcome)

	outcome, err = sync.DeleteFromProvider(ctx, "ext_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncMissing, outcome)
	assert.Empty(t, store.users)
}
