package storage

import (
	"context"
	"testing"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_UpsertCredential(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "cred@example.com")
	ctx := context.Background()

	cred, err := store.UpsertCredential(ctx, user.ID, "key-one")
	require.NoError(t, err)
	assert.Equal(t, "key-one", cred.APIKey)
	assert.Nil(t, cred.LastSyncAt)

	syncedAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastSyncAt(ctx, user.ID, syncedAt))

	// Replacing the key keeps the same row and the watermark
	updated, err := store.UpsertCredential(ctx, user.ID, "key-two")
	require.NoError(t, err)
	assert.Equal(t, cred.ID, updated.ID)
	assert.Equal(t, "key-two", updated.APIKey)
	require.NotNil(t, updated.LastSyncAt)
	assert.True(t, updated.LastSyncAt.Equal(syncedAt))
}

func TestSQLiteStorage_GetCredentialNotFound(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "cred@example.com")

	_, err := store.GetCredential(context.Background(), user.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ListCredentials(t *testing.T) {
	store := createTestStorage(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	ctx := context.Background()

	creds, err := store.ListCredentials(ctx)
	require.NoError(t, err)
	assert.Empty(t, creds)

	_, err = store.UpsertCredential(ctx, alice.ID, "key-a")
	require.NoError(t, err)
	_, err = store.UpsertCredential(ctx, bob.ID, "key-b")
	require.NoError(t, err)

	creds, err = store.ListCredentials(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)

	byUser := map[int64]string{}
	for _, cred := range creds {
		byUser[cred.UserID] = cred.APIKey
	}
	assert.Equal(t, "key-a", byUser[alice.ID])
	assert.Equal(t, "key-b", byUser[bob.ID])
}

func TestSQLiteStorage_SetLastSyncAtMissingCredential(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "cred@example.com")

	err := store.SetLastSyncAt(context.Background(), user.ID, time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}
