package storage

import (
	"context"
	"fmt"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", common.ErrValidation)
	}
	return ctx.Err()
}

func validateString(value, field string) error {
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", common.ErrValidation, field)
	}
	return nil
}

func validateID(id int64, field string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive", common.ErrValidation, field)
	}
	return nil
}

func validateEntryType(typ model.EntryType) error {
	if err := typ.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction cannot be nil", common.ErrValidation)
	}
	if txn.AccountID <= 0 {
		return fmt.Errorf("%w: transaction requires an account", common.ErrValidation)
	}
	if txn.OccurredAt.IsZero() {
		return fmt.Errorf("%w: transaction requires an occurrence time", common.ErrValidation)
	}
	return nil
}
