package storage

import (
	"context"
	"testing"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_AccountCRUD(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "accounts@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Card", model.EntryTypeExpense, user.ID)
	require.NoError(t, err)
	assert.Positive(t, account.ID)
	assert.Equal(t, model.EntryTypeExpense, account.Type)

	byName, err := store.GetAccountByName(ctx, "Card", user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byName.ID)

	byID, err := store.GetAccountByID(ctx, account.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card", byID.Name)

	account.Name = "Debit Card"
	require.NoError(t, store.UpdateAccount(ctx, account))

	byID, err = store.GetAccountByID(ctx, account.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Debit Card", byID.Name)

	require.NoError(t, store.DeleteAccount(ctx, account.ID, user.ID))

	_, err = store.GetAccountByID(ctx, account.ID, user.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_AccountScopedToUser(t *testing.T) {
	store := createTestStorage(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Card", model.EntryTypeExpense, alice.ID)
	require.NoError(t, err)

	_, err = store.GetAccountByName(ctx, "Card", bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetAccountByID(ctx, account.ID, bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_DeleteAccountWithTransactions(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "accounts@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Card", model.EntryTypeExpense, user.ID)
	require.NoError(t, err)

	createTestTransaction(t, store, account.ID, time.Now(), "-10")

	// An account still referenced by transactions cannot be deleted
	err = store.DeleteAccount(ctx, account.ID, user.ID)
	assert.ErrorIs(t, err, common.ErrReferentialConflict)

	_, err = store.GetAccountByID(ctx, account.ID, user.ID)
	require.NoError(t, err)
}

func TestSQLiteStorage_AccountBalance(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "accounts@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Card", model.EntryTypeExpense, user.ID)
	require.NoError(t, err)

	// Empty account balances to exactly zero
	balance, err := store.AccountBalance(ctx, account.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.Zero))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestTransaction(t, store, account.ID, base, "100.10")
	createTestTransaction(t, store, account.ID, base.Add(time.Hour), "-0.30")
	createTestTransaction(t, store, account.ID, base.Add(2*time.Hour), "-75.50")

	balance, err = store.AccountBalance(ctx, account.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("24.3")),
		"balance mismatch: got %s", balance)
}

func TestSQLiteStorage_ValidationErrors(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "accounts@example.com")
	ctx := context.Background()

	_, err := store.CreateAccount(ctx, "", model.EntryTypeExpense, user.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = store.CreateAccount(ctx, "Card", model.EntryType("savings"), user.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = store.CreateAccount(ctx, "Card", model.EntryTypeExpense, 0)
	assert.ErrorIs(t, err, common.ErrValidation)

	err = store.CreateTransaction(ctx, &model.Transaction{AccountID: 1})
	assert.ErrorIs(t, err, common.ErrValidation)
}
