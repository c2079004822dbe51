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

func createTestTransaction(t *testing.T, store *SQLiteStorage, accountID int64, occurredAt time.Time, amount string) *model.Transaction {
	t.Helper()

	txn := &model.Transaction{
		OccurredAt: occurredAt,
		AccountID:  accountID,
		Amount:     decimal.RequireFromString(amount),
	}
	if err := store.CreateTransaction(context.Background(), txn); err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}
	return txn
}

func TestSQLiteStorage_TransactionExists(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "txn@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, user.ID)
	require.NoError(t, err)

	occurredAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	createTestTransaction(t, store, account.ID, occurredAt, "150.00")

	tests := []struct {
		occurredAt time.Time
		name       string
		amount     string
		want       bool
	}{
		{
			name:       "same time and amount",
			occurredAt: occurredAt,
			amount:     "150.00",
			want:       true,
		},
		{
			name:       "same instant in another zone",
			occurredAt: occurredAt.In(time.FixedZone("MSK", 3*60*60)),
			amount:     "150.00",
			want:       true,
		},
		{
			name:       "trailing zeros do not matter",
			occurredAt: occurredAt,
			amount:     "150.0000",
			want:       true,
		},
		{
			name:       "different amount",
			occurredAt: occurredAt,
			amount:     "150.01",
			want:       false,
		},
		{
			name:       "opposite sign",
			occurredAt: occurredAt,
			amount:     "-150.00",
			want:       false,
		},
		{
			name:       "different time",
			occurredAt: occurredAt.Add(time.Second),
			amount:     "150.00",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.TransactionExists(ctx, user.ID, tt.occurredAt, decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStorage_TransactionExistsScopedToUser(t *testing.T) {
	store := createTestStorage(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, alice.ID)
	require.NoError(t, err)

	occurredAt := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	createTestTransaction(t, store, account.ID, occurredAt, "150.00")

	exists, err := store.TransactionExists(ctx, bob.ID, occurredAt, decimal.RequireFromString("150.00"))
	require.NoError(t, err)
	assert.False(t, exists, "another user's rows must not count as duplicates")
}

func TestSQLiteStorage_TransactionAmountRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "txn@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Main Expense", model.EntryTypeExpense, user.ID)
	require.NoError(t, err)

	// Values chosen to misbehave under binary floats
	amounts := []string{"-0.1", "0.2", "-75.5", "1234567.89", "0.005"}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, amount := range amounts {
		createTestTransaction(t, store, account.ID, base.Add(time.Duration(i)*time.Hour), amount)
	}

	txns, err := store.ListTransactionsByMonth(ctx, user.ID, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, txns, len(amounts))

	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("1234492.495")),
		"exact sum mismatch: got %s", total)
}

func TestSQLiteStorage_ListTransactionsByMonth(t *testing.T) {
	store := createTestStorage(t)
	user := createTestUser(t, store, "txn@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, user.ID)
	require.NoError(t, err)

	// Boundary rows: last instant of February, through March, first of April
	createTestTransaction(t, store, account.ID, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC), "1")
	early := createTestTransaction(t, store, account.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2")
	late := createTestTransaction(t, store, account.ID, time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC), "3")
	createTestTransaction(t, store, account.ID, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "4")

	txns, err := store.ListTransactionsByMonth(ctx, user.ID, 2024, time.March)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	// Newest first
	assert.Equal(t, late.ID, txns[0].ID)
	assert.Equal(t, early.ID, txns[1].ID)
}

func TestSQLiteStorage_GetTransactionScopedToUser(t *testing.T) {
	store := createTestStorage(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, alice.ID)
	require.NoError(t, err)

	txn := createTestTransaction(t, store, account.ID, time.Now(), "10")

	got, err := store.GetTransaction(ctx, txn.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)

	_, err = store.GetTransaction(ctx, txn.ID, bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.DeleteTransaction(ctx, txn.ID, bob.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_DeleteAllTransactions(t *testing.T) {
	store := createTestStorage(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")
	ctx := context.Background()

	aliceAccount, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, alice.ID)
	require.NoError(t, err)
	bobAccount, err := store.CreateAccount(ctx, "Main Income", model.EntryTypeIncome, bob.ID)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createTestTransaction(t, store, aliceAccount.ID, base.Add(time.Duration(i)*time.Hour), "10")
	}
	createTestTransaction(t, store, bobAccount.ID, base, "10")

	deleted, err := store.DeleteAllTransactions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	aliceCount, err := store.CountTransactions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), aliceCount)

	// Other users' ledgers are untouched
	bobCount, err := store.CountTransactions(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobCount)
}
