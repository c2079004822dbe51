package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akulov/finbook/internal/common"
	"github.com/akulov/finbook/internal/model"
	"github.com/akulov/finbook/internal/service"
)

// sentinelNames are feed values meaning "no selection". They resolve to
// no entity and must never create one.
var sentinelNames = map[string]struct{}{
	"не выбран":    {},
	"not selected": {},
}

func isSentinel(name string) bool {
	if strings.TrimSpace(name) == "" {
		return true
	}
	_, ok := sentinelNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Resolver maps free-text feed titles to local entity ids, creating
// entities on first sight. Each miss is written immediately rather than
// batched, so two operations naming the same new entity within one fetch
// resolve to a single row. Calls for one batch must stay sequential per
// user; the importer's per-credential lock guarantees that.
type Resolver struct {
	ledger service.Ledger
}

// NewResolver creates a resolver over the given ledger, which may be an
// open transaction.
func NewResolver(ledger service.Ledger) *Resolver {
	return &Resolver{ledger: ledger}
}

// ResolveAccount returns the id of the user's account with the given
// name, creating it with the inferred type on first sight.
func (r *Resolver) ResolveAccount(ctx context.Context, name string, typ model.EntryType, userID int64) (int64, error) {
	account, err := r.ledger.GetAccountByName(ctx, name, userID)
	if err == nil {
		return account.ID, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return 0, fmt.Errorf("failed to look up account %q: %w", name, err)
	}

	account, err = r.ledger.CreateAccount(ctx, name, typ, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to create account %q: %w", name, err)
	}

	return account.ID, nil
}

// ResolveCounterparty returns the id of the user's counterparty with the
// given name, creating it on first sight. Sentinel names resolve to nil.
func (r *Resolver) ResolveCounterparty(ctx context.Context, name string, userID int64) (*int64, error) {
	if isSentinel(name) {
		return nil, nil
	}

	cp, err := r.ledger.GetCounterpartyByName(ctx, name, userID)
	if err == nil {
		return &cp.ID, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up counterparty %q: %w", name, err)
	}

	cp, err = r.ledger.CreateCounterparty(ctx, name, "", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create counterparty %q: %w", name, err)
	}

	return &cp.ID, nil
}

// ResolveGroup returns the id of the user's group with the given name
// and type, creating it on first sight. Sentinel names resolve to nil.
func (r *Resolver) ResolveGroup(ctx context.Context, name string, typ model.EntryType, userID int64) (*int64, error) {
	if isSentinel(name) {
		return nil, nil
	}

	group, err := r.ledger.GetGroupByKey(ctx, name, typ, userID)
	if err == nil {
		return &group.ID, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up group %q: %w", name, err)
	}

	group, err = r.ledger.CreateGroup(ctx, name, typ, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group %q: %w", name, err)
	}

	return &group.ID, nil
}
