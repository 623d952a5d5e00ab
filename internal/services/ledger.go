package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// Ledger serializes every mutation of an account behind a per-account mutex.
// A mutation function receives the current snapshot, changes it in place and
// returns true to commit; returning false discards the changes. Mutation
// functions must not perform outward side effects: staged notifications are
// collected by the caller and dispatched after Execute returns.
type Ledger struct {
	store AccountStore
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLedger(store AccountStore, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
		locks: make(map[int64]*sync.Mutex),
	}
}

func (l *Ledger) lockFor(accountID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[accountID] = lock
	}
	return lock
}

// Execute runs fn against the account snapshot under the account's lock and
// persists the whole record if fn commits. The returned bool reports whether
// the mutation was committed. If persistence fails after a commit, the
// in-memory result is still returned alongside the error; the stored state is
// unknown and must be re-read before it is trusted again.
func (l *Ledger) Execute(ctx context.Context, accountID int64, fn func(acc *models.Account) bool) (*models.Account, bool, error) {
	lock := l.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	acc, err := l.store.GetOrCreateAccount(ctx, accountID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load account %d: %w", accountID, err)
	}

	if !fn(acc) {
		return acc, false, nil
	}

	if err := l.store.SaveAccount(ctx, acc); err != nil {
		l.log.Error().Err(err).Int64("account_id", accountID).Msg("persist failed after commit")
		return acc, true, fmt.Errorf("failed to persist account %d: %w", accountID, err)
	}
	return acc, true, nil
}

// Load returns the current snapshot without taking the account lock. It is
// meant for display-only reads that tolerate slight staleness.
func (l *Ledger) Load(ctx context.Context, accountID int64) (*models.Account, error) {
	return l.store.GetOrCreateAccount(ctx, accountID)
}
