package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/shopspring/decimal"
)

func createAccount(ctx context.Context, q querier, name string, typ model.EntryType, userID int64) (*model.Account, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateEntryType(typ); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO accounts (name, account_type, user_id) VALUES (?, ?, ?)`,
		name, string(typ), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account id: %w", err)
	}

	return scanAccount(q.QueryRowContext(ctx, accountColumns+` WHERE id = ?`, id))
}

const accountColumns = `SELECT id, name, account_type, user_id, created_at FROM accounts`

func scanAccount(row *sql.Row) (*model.Account, error) {
	var account model.Account
	var typ string
	err := row.Scan(&account.ID, &account.Name, &typ, &account.UserID, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	account.Type = model.EntryType(typ)
	return &account, nil
}

func getAccountByName(ctx context.Context, q querier, name string, userID int64) (*model.Account, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanAccount(q.QueryRowContext(ctx,
		accountColumns+` WHERE name = ? AND user_id = ?`, name, userID))
}

// CreateAccount inserts a new account owned by the user.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createAccount(ctx, s.db, name, typ, userID)
}

// GetAccountByName returns the user's account with the given name, the
// lazy-resolution lookup key.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, name string, userID int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccountByName(ctx, s.db, name, userID)
}

// GetAccountByID returns the user's account with the given id.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id, userID int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanAccount(s.db.QueryRowContext(ctx,
		accountColumns+` WHERE id = ? AND user_id = ?`, id, userID))
}

// ListAccounts returns all of the user's accounts ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, userID int64) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		accountColumns+` WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		var typ string
		if err := rows.Scan(&account.ID, &account.Name, &typ, &account.UserID, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Type = model.EntryType(typ)
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccount updates the account's name and type.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account cannot be nil", common.ErrValidation)
	}
	if err := validateString(account.Name, "name"); err != nil {
		return err
	}
	if err := validateEntryType(account.Type); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, account_type = ? WHERE id = ? AND user_id = ?`,
		account.Name, string(account.Type), account.ID, account.UserID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return requireRowAffected(result, "account")
}

// DeleteAccount removes the account unless transactions still reference it.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	var refs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count account references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: account has %d transactions", common.ErrReferentialConflict, refs)
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return requireRowAffected(result, "account")
}

// AccountBalance sums the account's transaction amounts with exact
// decimal arithmetic.
func (s *SQLiteStorage) AccountBalance(ctx context.Context, id, userID int64) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	if err := validateID(id, "id"); err != nil {
		return decimal.Zero, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return decimal.Zero, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.amount
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.account_id = ? AND a.user_id = ?`, id, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	balance := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan amount: %w", err)
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse stored amount %q: %w", raw, err)
		}
		balance = balance.Add(amount)
	}

	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("error iterating amounts: %w", err)
	}

	return balance, nil
}

func requireRowAffected(result sql.Result, entity string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, entity)
	}
	return nil
}
