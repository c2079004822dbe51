package storage

import (
	"context"
	"testing"

	"github.com/akulov/finbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_CreateUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "user@example.com", "hash")
	require.NoError(t, err)
	assert.Positive(t, user.ID)
	assert.Equal(t, "user@example.com", user.Email)

	// Emails are unique
	_, err = store.CreateUser(ctx, "user@example.com", "other-hash")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSQLiteStorage_GetUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "user@example.com", "hash")
	require.NoError(t, err)

	byEmail, err := store.GetUserByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := store.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", byID.Email)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
