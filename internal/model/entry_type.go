// Package model defines the core domain types shared across storage,
// sync, and the web layer.
package model

import "fmt"

// EntryType classifies accounts and groups as income or expense sides
// of the ledger.
type EntryType string

// Valid entry types.
const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// Validate returns an error if the entry type is not a known value.
func (t EntryType) Validate() error {
	switch t {
	case EntryTypeIncome, EntryTypeExpense:
		return nil
	default:
		return fmt.Errorf("invalid entry type: %q", string(t))
	}
}
