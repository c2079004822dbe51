// Package testutil provides test helpers for exercising the ledger
// against an in-memory database.
package testutil

import (
	"context"
	"testing"

	"github.com/akulov/finbook/internal/model"
	"github.com/akulov/finbook/internal/storage"
)

// TestDB wraps an in-memory migrated SQLite store for tests.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with migrations
// applied. Cleanup is registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// MustCreateUser creates a user with the given email or fails the test.
func (db *TestDB) MustCreateUser(email string) *model.User {
	db.t.Helper()

	var user model.User
	if err := user.SetPassword("test-password"); err != nil {
		db.t.Fatalf("failed to hash password: %v", err)
	}

	created, err := db.Storage.CreateUser(context.Background(), email, user.PasswordHash)
	if err != nil {
		db.t.Fatalf("failed to create user %q: %v", email, err)
	}

	return created
}

// MustCreateAccount creates an account for the user or fails the test.
func (db *TestDB) MustCreateAccount(name string, typ model.EntryType, userID int64) *model.Account {
	db.t.Helper()

	account, err := db.Storage.CreateAccount(context.Background(), name, typ, userID)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}

	return account
}
