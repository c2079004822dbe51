package storage

import (
	"context"
	"testing"

	"github.com/akulov/finbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a migrated in-memory store.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStorage, email string) *model.User {
	t.Helper()

	user, err := store.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", email, err)
	}
	return user
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Migrating twice is a no-op
	require.NoError(t, store.Migrate(ctx))
}

func TestSQLiteStorage_BeginTx(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "tx@example.com")
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	account, err := tx.CreateAccount(ctx, "Pending", model.EntryTypeIncome, user.ID)
	require.NoError(t, err)
	assert.Positive(t, account.ID)

	// Rolled-back writes are invisible afterwards
	require.NoError(t, tx.Rollback())

	_, err = store.GetAccountByName(ctx, "Pending", user.ID)
	assert.Error(t, err)

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)

	_, err = tx.CreateAccount(ctx, "Committed", model.EntryTypeIncome, user.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	account, err = store.GetAccountByName(ctx, "Committed", user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Committed", account.Name)
}
