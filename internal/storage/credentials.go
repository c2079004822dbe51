package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

const credentialColumns = `SELECT id, user_id, api_key, last_sync_at, created_at, updated_at FROM credentials`

func scanCredential(row *sql.Row) (*model.Credential, error) {
	var cred model.Credential
	var lastSyncAt sql.NullTime
	err := row.Scan(&cred.ID, &cred.UserID, &cred.APIKey, &lastSyncAt, &cred.CreatedAt, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: credential", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credential: %w", err)
	}
	if lastSyncAt.Valid {
		at := lastSyncAt.Time
		cred.LastSyncAt = &at
	}
	return &cred, nil
}

// UpsertCredential stores the user's API key, creating the credential on
// first use and replacing the key on subsequent imports. The watermark
// is preserved across key changes.
func (s *SQLiteStorage) UpsertCredential(ctx context.Context, userID int64, apiKey string) (*model.Credential, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(apiKey, "apiKey"); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, api_key)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET api_key = excluded.api_key, updated_at = CURRENT_TIMESTAMP`,
		userID, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert credential: %w", err)
	}

	return s.GetCredential(ctx, userID)
}

// GetCredential returns the user's credential.
func (s *SQLiteStorage) GetCredential(ctx context.Context, userID int64) (*model.Credential, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	return scanCredential(s.db.QueryRowContext(ctx,
		credentialColumns+` WHERE user_id = ?`, userID))
}

// ListCredentials returns all registered credentials, one per user.
func (s *SQLiteStorage) ListCredentials(ctx context.Context) ([]model.Credential, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, credentialColumns+` ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var credentials []model.Credential
	for rows.Next() {
		var cred model.Credential
		var lastSyncAt sql.NullTime
		if err := rows.Scan(&cred.ID, &cred.UserID, &cred.APIKey, &lastSyncAt, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		if lastSyncAt.Valid {
			at := lastSyncAt.Time
			cred.LastSyncAt = &at
		}
		credentials = append(credentials, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credentials: %w", err)
	}

	return credentials, nil
}

func setLastSyncAt(ctx context.Context, q querier, userID int64, at time.Time) error {
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE credentials
		SET last_sync_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`, at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update watermark: %w", err)
	}

	return requireRowAffected(result, "credential")
}

// SetLastSyncAt advances the credential's sync watermark.
func (s *SQLiteStorage) SetLastSyncAt(ctx context.Context, userID int64, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return setLastSyncAt(ctx, s.db, userID, at)
}
