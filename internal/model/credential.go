package model

import "time"

// Credential holds one user's PlanFact API key together with the sync
// watermark. LastSyncAt is nil until the first successful cycle and is
// advanced only by the scheduler after a cycle commits; a failed cycle
// leaves it untouched so the same window is retried.
type Credential struct {
	LastSyncAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	APIKey     string
	ID         int64
	UserID     int64
}

// Due reports whether a sync should run now given the configured interval.
// A credential with no watermark is always due.
func (c *Credential) Due(now time.Time, interval time.Duration) bool {
	if c.LastSyncAt == nil {
		return true
	}
	return now.Sub(*c.LastSyncAt) > interval
}
