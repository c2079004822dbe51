package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one ledger entry. OccurredAt is the operation time from
// the source; CreatedAt is the record-creation time, which for imported
// rows is preserved from the feed rather than set at ingestion.
//
// Amount is a signed exact decimal: outgoing operations are stored
// negative and incoming positive, regardless of the owning account's
// type. Balances and report totals are summed with decimal arithmetic,
// never binary floats.
type Transaction struct {
	OccurredAt     time.Time
	CreatedAt      time.Time
	Amount         decimal.Decimal
	Comment        string
	CounterpartyID *int64
	GroupID        *int64
	ID             int64
	AccountID      int64
}
