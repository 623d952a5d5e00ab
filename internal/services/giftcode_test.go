package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

func newGiftCodeFixture(t *testing.T) (*services.GiftCodeService, *memStore) {
	t.Helper()
	store := newMemStore()
	ledger := services.NewLedger(store, zerolog.Nop())
	svc := services.NewGiftCodeService(ledger, store, &recordNotifier{}, testAudit(t), store, zerolog.Nop())
	return svc, store
}

func TestRedeemGiftCode(t *testing.T) {
	svc, store := newGiftCodeFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "WELCOME", 5_000, 1, 2, 0); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	res, err := svc.Redeem(ctx, 1, " welcome ")
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if res.Reward != 5_000 {
		t.Errorf("reward = %d, want 5000", res.Reward)
	}
	if res.WagerAdded != 10_000 {
		t.Errorf("wager added = %d, want 10000", res.WagerAdded)
	}
	if res.NewBalance != 5_000 {
		t.Errorf("new balance = %d, want 5000", res.NewBalance)
	}

	acc := store.account(t, 1)
	if acc.WagerRequirement != 10_000 {
		t.Errorf("wager requirement = %d, want 10000", acc.WagerRequirement)
	}
	if !acc.HasRedeemed("WELCOME") {
		t.Error("code not recorded on account")
	}

	gc, err := store.GetGiftCode(ctx, "WELCOME")
	if err != nil {
		t.Fatalf("GetGiftCode failed: %v", err)
	}
	if gc.Used != 1 {
		t.Errorf("used = %d, want 1", gc.Used)
	}
}

func TestRedeemGiftCodeRejections(t *testing.T) {
	svc, store := newGiftCodeFixture(t)
	ctx := context.Background()

	if _, err := svc.Redeem(ctx, 1, "NOPE"); !errors.Is(err, services.ErrCodeNotFound) {
		t.Errorf("unknown code err = %v, want ErrCodeNotFound", err)
	}

	// Single-use code: first account consumes it, second is turned away.
	if _, err := svc.Create(ctx, "ONCE", 5_000, 1, 0, 0); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 1, "ONCE"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 2, "ONCE"); !errors.Is(err, services.ErrCodeExhausted) {
		t.Errorf("exhausted err = %v, want ErrCodeExhausted", err)
	}
	if _, err := svc.Redeem(ctx, 1, "ONCE"); !errors.Is(err, services.ErrCodeAlreadyUsed) {
		t.Errorf("repeat redeem err = %v, want ErrCodeAlreadyUsed", err)
	}

	// Expired code.
	store.SaveGiftCode(ctx, &models.GiftCode{
		Code:      "OLD",
		Amount:    1_000,
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	if _, err := svc.Redeem(ctx, 3, "OLD"); !errors.Is(err, services.ErrCodeExpired) {
		t.Errorf("expired err = %v, want ErrCodeExpired", err)
	}
}

// staleCodeStore serves gift code reads from a fixed snapshot while writes
// hit the backing store, modeling a redeemer that read the code before a
// concurrent redeemer committed.
type staleCodeStore struct {
	*memStore
	snapshot models.GiftCode
}

func (s *staleCodeStore) GetGiftCode(_ context.Context, code string) (*models.GiftCode, error) {
	if code != s.snapshot.Code {
		return nil, services.ErrCodeNotFound
	}
	clone := s.snapshot
	return &clone, nil
}

func TestRedeemConcurrentLastUse(t *testing.T) {
	store := newMemStore()
	ledger := services.NewLedger(store, zerolog.Nop())
	ctx := context.Background()

	gc := &models.GiftCode{Code: "LAST", Amount: 5_000, Quantity: 1, WagerMultiplier: 2}
	if err := store.SaveGiftCode(ctx, gc); err != nil {
		t.Fatalf("SaveGiftCode failed: %v", err)
	}

	stale := &staleCodeStore{memStore: store, snapshot: *gc}
	svc := services.NewGiftCodeService(ledger, stale, &recordNotifier{}, testAudit(t), store, zerolog.Nop())

	// Both redeemers see the unused snapshot; the usage counter has to turn
	// the second one away and undo its credit.
	if _, err := svc.Redeem(ctx, 1, "LAST"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 2, "LAST"); !errors.Is(err, services.ErrCodeExhausted) {
		t.Fatalf("second redeem err = %v, want ErrCodeExhausted", err)
	}

	winner := store.account(t, 1)
	if winner.Balance != 5_000 {
		t.Errorf("winner balance = %d, want 5000", winner.Balance)
	}

	loser := store.account(t, 2)
	if loser.Balance != 0 {
		t.Errorf("loser balance = %d, want 0 after reversal", loser.Balance)
	}
	if loser.WagerRequirement != 0 {
		t.Errorf("loser wager requirement = %d, want 0", loser.WagerRequirement)
	}
	if loser.HasRedeemed("LAST") {
		t.Error("reversed redemption left code on account")
	}

	stored, err := store.GetGiftCode(ctx, "LAST")
	if err != nil {
		t.Fatalf("GetGiftCode failed: %v", err)
	}
	if stored.Used != 1 {
		t.Errorf("used = %d, want 1", stored.Used)
	}
}

func TestRedeemUnlimitedQuantity(t *testing.T) {
	svc, _ := newGiftCodeFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "OPEN", 2_000, 0, 0, 0); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for id := int64(1); id <= 5; id++ {
		if _, err := svc.Redeem(ctx, id, "OPEN"); err != nil {
			t.Fatalf("redeem by account %d failed: %v", id, err)
		}
	}
}

func TestCreateGiftCodeValidation(t *testing.T) {
	svc, _ := newGiftCodeFixture(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "DUP", 1_000, 1, 0, 0); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "dup", 1_000, 1, 0, 0); !errors.Is(err, services.ErrCodeExists) {
		t.Errorf("duplicate err = %v, want ErrCodeExists", err)
	}
	if _, err := svc.Create(ctx, "", 1_000, 1, 0, 0); !errors.Is(err, services.ErrInvalidAmount) {
		t.Errorf("empty code err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.Create(ctx, "NEG", -1, 1, 0, 0); !errors.Is(err, services.ErrInvalidAmount) {
		t.Errorf("negative amount err = %v, want ErrInvalidAmount", err)
	}

	gc, err := svc.Create(ctx, "TTL", 1_000, 1, 0, 5*time.Minute)
	if err != nil {
		t.Fatalf("Create with ttl failed: %v", err)
	}
	if gc.ExpiresAt <= time.Now().Unix() {
		t.Errorf("expires_at = %d, want future timestamp", gc.ExpiresAt)
	}
}

func TestDeleteAndListGiftCodes(t *testing.T) {
	svc, _ := newGiftCodeFixture(t)
	ctx := context.Background()

	svc.Create(ctx, "A1", 1_000, 1, 0, 0)
	svc.Create(ctx, "B2", 2_000, 1, 0, 0)

	codes, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(codes) != 2 {
		t.Errorf("listed %d codes, want 2", len(codes))
	}

	if err := svc.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Redeem(ctx, 1, "A1"); !errors.Is(err, services.ErrCodeNotFound) {
		t.Errorf("redeem deleted err = %v, want ErrCodeNotFound", err)
	}
}
