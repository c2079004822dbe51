// Package sync implements the synchronization engine that reconciles the
// PlanFact operation feed against the local ledger.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/akulov/finbook/internal/planfact"
	"github.com/akulov/finbook/internal/service"
)

// FeedClient fetches operation pages from the external feed.
type FeedClient interface {
	GetOperations(ctx context.Context, apiKey string, since *time.Time, limit int) ([]planfact.Operation, error)
}

// DefaultPageLimit is the number of operations requested per fetch.
const DefaultPageLimit = 10

// Importer runs fetch+ingest cycles. The scheduler and the web layer's
// on-demand import share one Importer so the per-credential locks cover
// both paths.
type Importer struct {
	store     service.Storage
	feed      FeedClient
	locks     map[int64]*stdsync.Mutex
	locksMu   stdsync.Mutex
	pageLimit int
}

// Config holds configuration options for the importer.
type Config struct {
	PageLimit int
}

// NewImporter creates an importer over the given storage and feed client.
func NewImporter(store service.Storage, feed FeedClient, config Config) *Importer {
	if config.PageLimit <= 0 {
		config.PageLimit = DefaultPageLimit
	}
	return &Importer{
		store:     store,
		feed:      feed,
		pageLimit: config.PageLimit,
		locks:     map[int64]*stdsync.Mutex{},
	}
}

// userLock returns the mutex serializing sync cycles for one credential.
func (i *Importer) userLock(userID int64) *stdsync.Mutex {
	i.locksMu.Lock()
	defer i.locksMu.Unlock()

	mu, ok := i.locks[userID]
	if !ok {
		mu = &stdsync.Mutex{}
		i.locks[userID] = mu
	}
	return mu
}

// Ingest runs the dedup/ingestion algorithm over a batch of fetched
// operations and returns the number of newly inserted transactions.
// Ingesting the same batch twice inserts nothing on the second run.
func (i *Importer) Ingest(ctx context.Context, ops []planfact.Operation, userID int64) (int, error) {
	return ingest(ctx, i.store, ops, userID)
}

func ingest(ctx context.Context, ledger service.Ledger, ops []planfact.Operation, userID int64) (int, error) {
	resolver := NewResolver(ledger)

	inserted := 0
	for _, op := range ops {
		// Draft operations are never ingested
		if !op.Committed {
			continue
		}

		amount := op.Value
		inferredType := model.EntryTypeIncome
		if op.Type == planfact.OperationOutcome {
			amount = amount.Neg()
			inferredType = model.EntryTypeExpense
		}

		exists, err := ledger.TransactionExists(ctx, userID, op.OccurredAt, amount)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		accountID, err := resolver.ResolveAccount(ctx, op.AccountTitle, inferredType, userID)
		if err != nil {
			return inserted, err
		}

		counterpartyID, err := resolver.ResolveCounterparty(ctx, op.CounterpartyTitle, userID)
		if err != nil {
			return inserted, err
		}

		groupID, err := resolver.ResolveGroup(ctx, op.CategoryTitle, inferredType, userID)
		if err != nil {
			return inserted, err
		}

		txn := &model.Transaction{
			OccurredAt:     op.OccurredAt,
			AccountID:      accountID,
			Amount:         amount,
			CounterpartyID: counterpartyID,
			GroupID:        groupID,
			Comment:        op.Comment,
			// Record-creation time comes from the source, not ingestion time
			CreatedAt: op.RecordedAt,
		}
		if err := ledger.CreateTransaction(ctx, txn); err != nil {
			return inserted, err
		}

		inserted++
	}

	return inserted, nil
}

// Sync runs one full cycle for a credential: fetch since the watermark,
// ingest, and commit the new rows together with the advanced watermark
// as a single transaction. On any failure the watermark does not move,
// so the next cycle retries the same window.
func (i *Importer) Sync(ctx context.Context, cred *model.Credential) (int, error) {
	mu := i.userLock(cred.UserID)
	mu.Lock()
	defer mu.Unlock()

	var ops []planfact.Operation
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		ops, fetchErr = i.feed.GetOperations(ctx, cred.APIKey, cred.LastSyncAt, i.pageLimit)
		if fetchErr == nil {
			return nil
		}
		// A rejected request or a contract break is terminal for this
		// cycle; only transport-level failures are worth retrying now
		if errors.Is(fetchErr, common.ErrFeedUnavailable) || errors.Is(fetchErr, common.ErrMalformedTimestamp) {
			return &common.RetryableError{Err: fetchErr, Retryable: false}
		}
		return fetchErr
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch operations: %w", err)
	}

	tx, err := i.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	inserted, err := ingest(ctx, tx, ops, cred.UserID)
	if err != nil {
		return 0, err
	}

	if err := tx.SetLastSyncAt(ctx, cred.UserID, time.Now()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sync cycle: %w", err)
	}

	slog.Debug("Sync cycle committed",
		"user_id", cred.UserID,
		"fetched", len(ops),
		"inserted", inserted)

	return inserted, nil
}

// ImportNow performs one on-demand cycle for the user, persisting the
// supplied API key first. Errors are returned to the caller rather than
// swallowed, so the web layer can surface them as advisory messages.
func (i *Importer) ImportNow(ctx context.Context, apiKey string, userID int64) (int, error) {
	cred, err := i.store.UpsertCredential(ctx, userID, apiKey)
	if err != nil {
		return 0, err
	}
	return i.Sync(ctx, cred)
}
