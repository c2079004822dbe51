package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

const counterpartyColumns = `SELECT id, name, description, user_id, created_at FROM counterparties`

func scanCounterparty(row *sql.Row) (*model.Counterparty, error) {
	var cp model.Counterparty
	err := row.Scan(&cp.ID, &cp.Name, &cp.Description, &cp.UserID, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: counterparty", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan counterparty: %w", err)
	}
	return &cp, nil
}

func createCounterparty(ctx context.Context, q querier, name, description string, userID int64) (*model.Counterparty, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO counterparties (name, description, user_id) VALUES (?, ?, ?)`,
		name, description, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert counterparty: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get counterparty id: %w", err)
	}

	return scanCounterparty(q.QueryRowContext(ctx, counterpartyColumns+` WHERE id = ?`, id))
}

func getCounterpartyByName(ctx context.Context, q querier, name string, userID int64) (*model.Counterparty, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanCounterparty(q.QueryRowContext(ctx,
		counterpartyColumns+` WHERE name = ? AND user_id = ?`, name, userID))
}

// CreateCounterparty inserts a new counterparty owned by the user.
func (s *SQLiteStorage) CreateCounterparty(ctx context.Context, name, description string, userID int64) (*model.Counterparty, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createCounterparty(ctx, s.db, name, description, userID)
}

// GetCounterpartyByName returns the user's counterparty with the given name.
func (s *SQLiteStorage) GetCounterpartyByName(ctx context.Context, name string, userID int64) (*model.Counterparty, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCounterpartyByName(ctx, s.db, name, userID)
}

// GetCounterpartyByID returns the user's counterparty with the given id.
func (s *SQLiteStorage) GetCounterpartyByID(ctx context.Context, id, userID int64) (*model.Counterparty, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanCounterparty(s.db.QueryRowContext(ctx,
		counterpartyColumns+` WHERE id = ? AND user_id = ?`, id, userID))
}

// ListCounterparties returns all of the user's counterparties ordered by name.
func (s *SQLiteStorage) ListCounterparties(ctx context.Context, userID int64) ([]model.Counterparty, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		counterpartyColumns+` WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query counterparties: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counterparties []model.Counterparty
	for rows.Next() {
		var cp model.Counterparty
		if err := rows.Scan(&cp.ID, &cp.Name, &cp.Description, &cp.UserID, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan counterparty: %w", err)
		}
		counterparties = append(counterparties, cp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counterparties: %w", err)
	}

	return counterparties, nil
}

// UpdateCounterparty updates the counterparty's name and description.
func (s *SQLiteStorage) UpdateCounterparty(ctx context.Context, cp *model.Counterparty) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("%w: counterparty cannot be nil", common.ErrValidation)
	}
	if err := validateString(cp.Name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE counterparties SET name = ?, description = ? WHERE id = ? AND user_id = ?`,
		cp.Name, cp.Description, cp.ID, cp.UserID)
	if err != nil {
		return fmt.Errorf("failed to update counterparty: %w", err)
	}

	return requireRowAffected(result, "counterparty")
}

// DeleteCounterparty removes the counterparty unless transactions still
// reference it.
func (s *SQLiteStorage) DeleteCounterparty(ctx context.Context, id, userID int64) error {
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
		`SELECT COUNT(*) FROM transactions WHERE counterparty_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count counterparty references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: counterparty has %d transactions", common.ErrReferentialConflict, refs)
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM counterparties WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete counterparty: %w", err)
	}

	return requireRowAffected(result, "counterparty")
}
