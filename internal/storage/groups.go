package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

const groupColumns = `SELECT id, name, group_type, user_id, created_at FROM transaction_groups`

func scanGroup(row *sql.Row) (*model.Group, error) {
	var group model.Group
	var typ string
	err := row.Scan(&group.ID, &group.Name, &typ, &group.UserID, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}
	group.Type = model.EntryType(typ)
	return &group, nil
}

func createGroup(ctx context.Context, q querier, name string, typ model.EntryType, userID int64) (*model.Group, error) {
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
		`INSERT INTO transaction_groups (name, group_type, user_id) VALUES (?, ?, ?)`,
		name, string(typ), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get group id: %w", err)
	}

	return scanGroup(q.QueryRowContext(ctx, groupColumns+` WHERE id = ?`, id))
}

func getGroupByKey(ctx context.Context, q querier, name string, typ model.EntryType, userID int64) (*model.Group, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateEntryType(typ); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanGroup(q.QueryRowContext(ctx,
		groupColumns+` WHERE name = ? AND group_type = ? AND user_id = ?`,
		name, string(typ), userID))
}

// CreateGroup inserts a new transaction group owned by the user.
func (s *SQLiteStorage) CreateGroup(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return createGroup(ctx, s.db, name, typ, userID)
}

// GetGroupByKey returns the user's group with the given name and type.
// Type is part of the key so an income group and an expense group can
// share a name without collapsing into one entity.
func (s *SQLiteStorage) GetGroupByKey(ctx context.Context, name string, typ model.EntryType, userID int64) (*model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getGroupByKey(ctx, s.db, name, typ, userID)
}

// GetGroupByID returns the user's group with the given id.
func (s *SQLiteStorage) GetGroupByID(ctx context.Context, id, userID int64) (*model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanGroup(s.db.QueryRowContext(ctx,
		groupColumns+` WHERE id = ? AND user_id = ?`, id, userID))
}

// ListGroups returns all of the user's groups ordered by name.
func (s *SQLiteStorage) ListGroups(ctx context.Context, userID int64) ([]model.Group, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		groupColumns+` WHERE user_id = ? ORDER BY name, group_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []model.Group
	for rows.Next() {
		var group model.Group
		var typ string
		if err := rows.Scan(&group.ID, &group.Name, &typ, &group.UserID, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.Type = model.EntryType(typ)
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// UpdateGroup updates the group's name and type.
func (s *SQLiteStorage) UpdateGroup(ctx context.Context, group *model.Group) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if group == nil {
		return fmt.Errorf("%w: group cannot be nil", common.ErrValidation)
	}
	if err := validateString(group.Name, "name"); err != nil {
		return err
	}
	if err := validateEntryType(group.Type); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transaction_groups SET name = ?, group_type = ? WHERE id = ? AND user_id = ?`,
		group.Name, string(group.Type), group.ID, group.UserID)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	return requireRowAffected(result, "group")
}

// DeleteGroup removes the group unless transactions still reference it.
func (s *SQLiteStorage) DeleteGroup(ctx context.Context, id, userID int64) error {
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
		`SELECT COUNT(*) FROM transactions WHERE group_id = ?`, id).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count group references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: group has %d transactions", common.ErrReferentialConflict, refs)
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM transaction_groups WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return requireRowAffected(result, "group")
}
