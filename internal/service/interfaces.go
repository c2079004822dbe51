// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/akulov/finbook/internal/model"
	"github.com/shopspring/decimal"
)

// Ledger is the subset of storage operations a sync cycle touches. It is
// implemented both by the storage itself and by an open transaction, so
// ingestion can run against either.
type Ledger interface {
	// Account operations
	CreateAccount(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Account, error)
	GetAccountByName(ctx context.Context, name string, userID int64) (*model.Account, error)

	// Counterparty operations
	CreateCounterparty(ctx context.Context, name, description string, userID int64) (*model.Counterparty, error)
	GetCounterpartyByName(ctx context.Context, name string, userID int64) (*model.Counterparty, error)

	// Group operations
	CreateGroup(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error)
	GetGroupByKey(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	TransactionExists(ctx context.Context, userID int64, occurredAt time.Time, amount decimal.Decimal) (bool, error)
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	Ledger

	// User operations
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	// Account operations beyond lazy resolution
	GetAccountByID(ctx context.Context, id, userID int64) (*model.Account, error)
	ListAccounts(ctx context.Context, userID int64) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id, userID int64) error
	AccountBalance(ctx context.Context, id, userID int64) (decimal.Decimal, error)

	// Counterparty operations
	GetCounterpartyByID(ctx context.Context, id, userID int64) (*model.Counterparty, error)
	ListCounterparties(ctx context.Context, userID int64) ([]model.Counterparty, error)
	UpdateCounterparty(ctx context.Context, counterparty *model.Counterparty) error
	DeleteCounterparty(ctx context.Context, id, userID int64) error

	// Group operations
	GetGroupByID(ctx context.Context, id, userID int64) (*model.Group, error)
	ListGroups(ctx context.Context, userID int64) ([]model.Group, error)
	UpdateGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, id, userID int64) error

	// Transaction operations
	GetTransaction(ctx context.Context, id, userID int64) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction, userID int64) error
	DeleteTransaction(ctx context.Context, id, userID int64) error
	DeleteAllTransactions(ctx context.Context, userID int64) (int64, error)
	ListTransactionsByMonth(ctx context.Context, userID int64, year int, month time.Month) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, userID int64) (int64, error)

	// Credential operations
	UpsertCredential(ctx context.Context, userID int64, apiKey string) (*model.Credential, error)
	GetCredential(ctx context.Context, userID int64) (*model.Credential, error)
	ListCredentials(ctx context.Context) ([]model.Credential, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is an open database transaction. Ingested rows and the advanced
// watermark commit through the same Tx so a failed cycle leaves both
// untouched.
type Tx interface {
	Ledger

	SetLastSyncAt(ctx context.Context, userID int64, at time.Time) error

	Commit() error
	Rollback() error
}

// RetryOptions configures retry behavior for operations that may fail transiently.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
