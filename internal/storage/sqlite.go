// Package storage implements the ledger persistence layer on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akulov/finbook/internal/model"
	"github.com/akulov/finbook/internal/service"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// querier is satisfied by both *sql.DB and *sql.Tx so every query helper
// can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Tx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTx{tx: tx}, nil
}

// sqliteTx wraps sql.Tx to implement service.Tx. Every operation a sync
// cycle performs is available here so ingested rows and the advanced
// watermark commit or roll back as one unit.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) CreateAccount(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Account, error) {
	return createAccount(ctx, t.tx, name, typ, userID)
}

func (t *sqliteTx) GetAccountByName(ctx context.Context, name string, userID int64) (*model.Account, error) {
	return getAccountByName(ctx, t.tx, name, userID)
}

func (t *sqliteTx) CreateCounterparty(ctx context.Context, name, description string, userID int64) (*model.Counterparty, error) {
	return createCounterparty(ctx, t.tx, name, description, userID)
}

func (t *sqliteTx) GetCounterpartyByName(ctx context.Context, name string, userID int64) (*model.Counterparty, error) {
	return getCounterpartyByName(ctx, t.tx, name, userID)
}

func (t *sqliteTx) CreateGroup(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error) {
	return createGroup(ctx, t.tx, name, typ, userID)
}

func (t *sqliteTx) GetGroupByKey(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error) {
	return getGroupByKey(ctx, t.tx, name, typ, userID)
}

func (t *sqliteTx) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return createTransaction(ctx, t.tx, txn)
}

func (t *sqliteTx) TransactionExists(ctx context.Context, userID int64, occurredAt time.Time, amount decimal.Decimal) (bool, error) {
	return transactionExists(ctx, t.tx, userID, occurredAt, amount)
}

func (t *sqliteTx) SetLastSyncAt(ctx context.Context, userID int64, at time.Time) error {
	return setLastSyncAt(ctx, t.tx, userID, at)
}
