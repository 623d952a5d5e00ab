package services

import (
	"context"

	"blockbet-backend/internal/models"
)

// AccountStore is the durable record store for accounts. Records are always
// read and written whole; partial-field updates are not part of the contract.
type AccountStore interface {
	GetOrCreateAccount(ctx context.Context, id int64) (*models.Account, error)
	SaveAccount(ctx context.Context, acc *models.Account) error
	ListAccountIDs(ctx context.Context) ([]int64, error)
}

type WithdrawalStore interface {
	SaveWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error
	GetWithdrawal(ctx context.Context, id string) (*models.WithdrawalRequest, error)
	ListWithdrawals(ctx context.Context, status string) ([]*models.WithdrawalRequest, error)
}

type GiftCodeStore interface {
	GetGiftCode(ctx context.Context, code string) (*models.GiftCode, error)
	SaveGiftCode(ctx context.Context, gc *models.GiftCode) error
	// IncrementGiftCodeUsage atomically adjusts the usage counter and
	// returns the new value.
	IncrementGiftCodeUsage(ctx context.Context, code string, delta int) (int, error)
	DeleteGiftCode(ctx context.Context, code string) error
	ListGiftCodes(ctx context.Context) ([]*models.GiftCode, error)
}

// SettingsStore maps string keys to JSON-encoded values.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key string, value any) error
}

// TransactionRecorder keeps the bookkeeping trail queried by the admin
// surface. Records are written best effort after a ledger commit.
type TransactionRecorder interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
}

// SignalSupplier produces an ordered, newest-first list of recent blocks.
// Implementations must not fail: on any upstream error they return synthetic
// data so callers always receive limit entries.
type SignalSupplier interface {
	FetchRecent(ctx context.Context, limit int) []models.Block
}

// Notifier is a fire-and-forget event sink. Delivery failures are logged by
// the implementation and never propagated to the caller.
type Notifier interface {
	Notify(target string, payload any)
}
