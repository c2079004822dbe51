package model

import "time"

// Account is a money source or destination within one user's ledger.
// Accounts are created lazily during import, keyed by (name, user); the
// type is inferred from the first operation that names the account and
// never changes afterward.
type Account struct {
	CreatedAt time.Time
	Name      string
	Type      EntryType
	ID        int64
	UserID    int64
}

// Counterparty is the other party of a transaction. Counterparties are
// created lazily during import, keyed by (name, user).
type Counterparty struct {
	CreatedAt   time.Time
	Name        string
	Description string
	ID          int64
	UserID      int64
}

// Group is a user-defined transaction category. Groups are created
// lazily during import, keyed by (name, type, user): an income group
// and an expense group may share a name.
type Group struct {
	CreatedAt time.Time
	Name      string
	Type      EntryType
	ID        int64
	UserID    int64
}
