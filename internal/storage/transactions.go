package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/shopspring/decimal"
)

// Amounts are stored as canonical decimal strings so equality checks and
// sums never pass through binary floats. All timestamps are normalized
// to UTC before they hit the driver so identical instants always compare
// equal.

const transactionColumns = `SELECT id, occurred_at, account_id, amount, counterparty_id, group_id, comment, created_at FROM transactions`

func createTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	if err := validateTransaction(txn); err != nil {
		return err
	}

	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := q.ExecContext(ctx, `
		INSERT INTO transactions (occurred_at, account_id, amount, counterparty_id, group_id, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.OccurredAt.UTC(), txn.AccountID, txn.Amount.String(),
		txn.CounterpartyID, txn.GroupID, txn.Comment, createdAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction id: %w", err)
	}
	txn.ID = id

	return nil
}

func transactionExists(ctx context.Context, q querier, userID int64, occurredAt time.Time, amount decimal.Decimal) (bool, error) {
	if err := validateID(userID, "userID"); err != nil {
		return false, err
	}

	// Dedup heuristic: (user, operation time, signed amount). The feed
	// exposes no stable operation id, so two distinct operations sharing
	// a timestamp and amount are indistinguishable here.
	var exists bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM transactions t
			JOIN accounts a ON a.id = t.account_id
			WHERE a.user_id = ? AND t.occurred_at = ? AND t.amount = ?
		)`, userID, occurredAt.UTC(), amount.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}

	return exists, nil
}

func scanTransactionRow(scan func(dest ...any) error) (*model.Transaction, error) {
	var txn model.Transaction
	var rawAmount string
	err := scan(&txn.ID, &txn.OccurredAt, &txn.AccountID, &rawAmount,
		&txn.CounterpartyID, &txn.GroupID, &txn.Comment, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", rawAmount, err)
	}
	txn.Amount = amount

	return &txn, nil
}

// CreateTransaction inserts a new ledger transaction and sets its id.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return createTransaction(ctx, s.db, txn)
}

// TransactionExists reports whether the user already has a transaction
// at the given operation time with the given signed amount.
func (s *SQLiteStorage) TransactionExists(ctx context.Context, userID int64, occurredAt time.Time, amount decimal.Decimal) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	return transactionExists(ctx, s.db, userID, occurredAt, amount)
}

// GetTransaction returns the user's transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id, userID int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT t.id, t.occurred_at, t.account_id, t.amount, t.counterparty_id, t.group_id, t.comment, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND a.user_id = ?`, id, userID)

	txn, err := scanTransactionRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return txn, nil
}

// UpdateTransaction updates an existing transaction, verifying the
// target still belongs to the user.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	// Ownership check through the current account link
	if _, err := s.GetTransaction(ctx, txn.ID, userID); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET occurred_at = ?, account_id = ?, amount = ?, counterparty_id = ?, group_id = ?, comment = ?
		WHERE id = ?`,
		txn.OccurredAt.UTC(), txn.AccountID, txn.Amount.String(),
		txn.CounterpartyID, txn.GroupID, txn.Comment, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireRowAffected(result, "transaction")
}

// DeleteTransaction removes the user's transaction with the given id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE id = ? AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return requireRowAffected(result, "transaction")
}

// DeleteAllTransactions removes every transaction belonging to the user
// and returns how many were deleted.
func (s *SQLiteStorage) DeleteAllTransactions(ctx context.Context, userID int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE account_id IN (SELECT id FROM accounts WHERE user_id = ?)`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted transactions: %w", err)
	}

	return deleted, nil
}

// ListTransactionsByMonth returns the user's transactions within the
// calendar month, newest first.
func (s *SQLiteStorage) ListTransactionsByMonth(ctx context.Context, userID int64, year int, month time.Month) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.occurred_at, t.account_id, t.amount, t.counterparty_id, t.group_id, t.comment, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ? AND t.occurred_at >= ? AND t.occurred_at < ?
		ORDER BY t.occurred_at DESC`, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransactionRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CountTransactions returns the number of transactions owned by the user.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return 0, err
	}

	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}
