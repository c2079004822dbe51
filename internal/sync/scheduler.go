package sync

import (
	"context"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/akulov/finbook/internal/service"
)

// DefaultInterval is how often the scheduler wakes and how stale a
// watermark must be before a credential is due.
const DefaultInterval = 2 * time.Minute

// Scheduler owns the background sync loop. It wakes on a fixed period,
// evaluates every registered credential, and runs a cycle for each one
// that is due. One credential's failure is logged and never delays the
// others or stops the loop.
type Scheduler struct {
	store    service.Storage
	importer *Importer
	cancel   context.CancelFunc
	interval time.Duration
	wg       stdsync.WaitGroup
}

// NewScheduler creates a scheduler with injected dependencies. Interval
// values <= 0 fall back to DefaultInterval.
func NewScheduler(store service.Storage, importer *Importer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		store:    store,
		importer: importer,
		interval: interval,
	}
}

// Start launches the background loop. It returns immediately; the loop
// runs until Stop is called or the parent context is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		slog.Info("Sync scheduler started", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// First pass runs immediately rather than one interval in
		if err := s.RunOnce(ctx); err != nil {
			slog.Error("Sync pass failed", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				slog.Info("Sync scheduler stopped")
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil {
					slog.Error("Sync pass failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce evaluates all registered credentials and syncs each one that
// is due. Per-credential errors are logged and do not interrupt the
// pass; only the credential listing itself can fail it.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	credentials, err := s.store.ListCredentials(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for idx := range credentials {
		cred := &credentials[idx]
		if !cred.Due(now, s.interval) {
			continue
		}

		inserted, err := s.importer.Sync(ctx, cred)
		if err != nil {
			slog.Error("Sync cycle failed",
				"user_id", cred.UserID,
				"error", err)
			continue
		}

		slog.Info("Synced transactions",
			"user_id", cred.UserID,
			"inserted", inserted)
	}

	return nil
}
