package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

var errSaveFailed = errors.New("save failed")

func jsonEncode(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// memStore is an in-memory stand-in for the redis-backed stores so service
// tests run without external infrastructure.
type memStore struct {
	mu          sync.Mutex
	accounts    map[int64]*models.Account
	withdrawals map[string]*models.WithdrawalRequest
	giftcodes   map[string]*models.GiftCode
	settings    map[string]string
	txs         []*models.Transaction

	failSaves bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:    make(map[int64]*models.Account),
		withdrawals: make(map[string]*models.WithdrawalRequest),
		giftcodes:   make(map[string]*models.GiftCode),
		settings:    make(map[string]string),
	}
}

func (m *memStore) GetOrCreateAccount(_ context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[id]; ok {
		clone := *acc
		return &clone, nil
	}
	acc := models.NewAccount(id)
	m.accounts[id] = acc
	clone := *acc
	return &clone, nil
}

func (m *memStore) SaveAccount(_ context.Context, acc *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errSaveFailed
	}
	clone := *acc
	m.accounts[acc.ID] = &clone
	return nil
}

func (m *memStore) ListAccountIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memStore) SaveWithdrawal(_ context.Context, w *models.WithdrawalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *w
	m.withdrawals[w.ID] = &clone
	return nil
}

func (m *memStore) GetWithdrawal(_ context.Context, id string) (*models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.withdrawals[id]
	if !ok {
		return nil, services.ErrWithdrawalNotFound
	}
	clone := *w
	return &clone, nil
}

func (m *memStore) ListWithdrawals(_ context.Context, status string) ([]*models.WithdrawalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.WithdrawalRequest
	for _, w := range m.withdrawals {
		if w.Status == status {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memStore) GetGiftCode(_ context.Context, code string) (*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gc, ok := m.giftcodes[code]
	if !ok {
		return nil, services.ErrCodeNotFound
	}
	clone := *gc
	return &clone, nil
}

func (m *memStore) SaveGiftCode(_ context.Context, gc *models.GiftCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *gc
	m.giftcodes[gc.Code] = &clone
	return nil
}

func (m *memStore) IncrementGiftCodeUsage(_ context.Context, code string, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gc, ok := m.giftcodes[code]
	if !ok {
		return 0, services.ErrCodeNotFound
	}
	gc.Used += delta
	return gc.Used, nil
}

func (m *memStore) DeleteGiftCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.giftcodes[code]; !ok {
		return services.ErrCodeNotFound
	}
	delete(m.giftcodes, code)
	return nil
}

func (m *memStore) ListGiftCodes(_ context.Context) ([]*models.GiftCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.GiftCode
	for _, gc := range m.giftcodes {
		clone := *gc
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memStore) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[key]
	if !ok {
		return "", services.ErrSettingNotFound
	}
	return v, nil
}

func (m *memStore) SetSetting(_ context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = jsonEncode(value)
	return nil
}

func (m *memStore) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *tx
	m.txs = append(m.txs, &clone)
	return nil
}

// account reads the stored record directly, bypassing the ledger.
func (m *memStore) account(t *testing.T, id int64) *models.Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		t.Fatalf("account %d not found in store", id)
	}
	clone := *acc
	return &clone
}

// seed stores an account record directly.
func (m *memStore) seed(acc *models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *acc
	m.accounts[acc.ID] = &clone
}

// fixedFeed serves a preset candidate pool.
type fixedFeed struct {
	blocks []models.Block
}

func (f *fixedFeed) FetchRecent(_ context.Context, limit int) []models.Block {
	if len(f.blocks) > limit {
		return f.blocks[:limit]
	}
	return f.blocks
}

// recordNotifier captures published events for assertions.
type recordNotifier struct {
	mu     sync.Mutex
	events []any
}

func (n *recordNotifier) Notify(_ string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, payload)
}

func (n *recordNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func testAudit(t *testing.T) *services.AuditLog {
	t.Helper()
	return services.NewAuditLog(t.TempDir(), zerolog.Nop())
}
