package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

func newGameFixture(t *testing.T, blocks []models.Block) (*services.GameService, *memStore, *recordNotifier) {
	t.Helper()
	store := newMemStore()
	ledger := services.NewLedger(store, zerolog.Nop())
	notifier := &recordNotifier{}
	game := services.NewGameService(ledger, &fixedFeed{blocks: blocks}, store,
		notifier, testAudit(t), store, zerolog.Nop())
	return game, store, notifier
}

func TestAddStake(t *testing.T) {
	game, store, _ := newGameFixture(t, nil)
	ctx := context.Background()

	acc := models.NewAccount(1)
	acc.Balance = 50_000
	store.seed(acc)

	got, err := game.AddStake(ctx, 1, 10_000)
	if err != nil {
		t.Fatalf("AddStake failed: %v", err)
	}
	if got.PendingBet != 10_000 {
		t.Errorf("pending bet = %d, want 10000", got.PendingBet)
	}

	got, err = game.AddStake(ctx, 1, 20_000)
	if err != nil {
		t.Fatalf("second AddStake failed: %v", err)
	}
	if got.PendingBet != 30_000 {
		t.Errorf("pending bet = %d, want 30000", got.PendingBet)
	}

	if _, err := game.AddStake(ctx, 1, 30_000); !errors.Is(err, services.ErrInsufficientBalance) {
		t.Errorf("over-stake err = %v, want ErrInsufficientBalance", err)
	}
	if _, err := game.AddStake(ctx, 1, 0); !errors.Is(err, services.ErrInvalidAmount) {
		t.Errorf("zero stake err = %v, want ErrInvalidAmount", err)
	}
}

func TestStakeAllAndReset(t *testing.T) {
	game, store, _ := newGameFixture(t, nil)
	ctx := context.Background()

	acc := models.NewAccount(2)
	acc.Balance = 77_000
	store.seed(acc)

	got, err := game.StakeAll(ctx, 2)
	if err != nil {
		t.Fatalf("StakeAll failed: %v", err)
	}
	if got.PendingBet != 77_000 {
		t.Errorf("pending bet = %d, want 77000", got.PendingBet)
	}

	got, err = game.ResetStake(ctx, 2)
	if err != nil {
		t.Fatalf("ResetStake failed: %v", err)
	}
	if got.PendingBet != 0 {
		t.Errorf("pending bet after reset = %d, want 0", got.PendingBet)
	}
}

func TestSettleForcedWin(t *testing.T) {
	blocks := []models.Block{
		{Number: 200, Hash: "ab7"}, // high
		{Number: 199, Hash: "cd2"}, // low
	}
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(10)
	acc.Balance = 100_000
	acc.PendingBet = 10_000
	acc.WinRateOverride = 100
	store.seed(acc)

	res, err := game.Settle(ctx, 10, &models.BetRequest{
		GameKind:  models.GameKindSize,
		Selection: models.SelectionHigh,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if !res.Won {
		t.Fatal("forced win lost")
	}
	if res.BlockNumber != 200 || res.OutcomeKey != "high" {
		t.Errorf("resolved block %d outcome %q, want 200/high", res.BlockNumber, res.OutcomeKey)
	}
	if res.Delta != 9_500 {
		t.Errorf("delta = %d, want 9500", res.Delta)
	}
	if res.NewBalance != 109_500 {
		t.Errorf("new balance = %d, want 109500", res.NewBalance)
	}

	stored := store.account(t, 10)
	if stored.Balance != 109_500 {
		t.Errorf("stored balance = %d, want 109500", stored.Balance)
	}
	if stored.PendingBet != 0 {
		t.Errorf("pending bet = %d, want 0 after settlement", stored.PendingBet)
	}
	if stored.TotalWagered != 10_000 {
		t.Errorf("total wagered = %d, want 10000", stored.TotalWagered)
	}
	if len(stored.BetHistory) != 1 {
		t.Errorf("bet history length = %d, want 1", len(stored.BetHistory))
	}
}

func TestSettleForcedLoss(t *testing.T) {
	blocks := []models.Block{
		{Number: 200, Hash: "ab7"}, // high
		{Number: 199, Hash: "cd2"}, // low
	}
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(11)
	acc.Balance = 100_000
	acc.PendingBet = 10_000
	acc.WinRateOverride = 0
	store.seed(acc)

	res, err := game.Settle(ctx, 11, &models.BetRequest{
		GameKind:  models.GameKindSize,
		Selection: models.SelectionHigh,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if res.Won {
		t.Fatal("forced loss won")
	}
	if res.OutcomeKey != "low" {
		t.Errorf("outcome = %q, want low", res.OutcomeKey)
	}
	if res.NewBalance != 90_000 {
		t.Errorf("new balance = %d, want 90000", res.NewBalance)
	}
}

func TestSettleReducesWagerRequirement(t *testing.T) {
	blocks := []models.Block{{Number: 1, Hash: "a2"}}
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(12)
	acc.Balance = 100_000
	acc.PendingBet = 30_000
	acc.WagerRequirement = 20_000
	acc.WinRateOverride = 0
	store.seed(acc)

	if _, err := game.Settle(ctx, 12, &models.BetRequest{
		GameKind:  models.GameKindSize,
		Selection: models.SelectionHigh,
	}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// 20000 requirement minus 30000 staked floors at zero.
	if stored := store.account(t, 12); stored.WagerRequirement != 0 {
		t.Errorf("wager requirement = %d, want 0", stored.WagerRequirement)
	}
}

func TestSettleCreditsVIPReward(t *testing.T) {
	blocks := []models.Block{{Number: 1, Hash: "a2"}}
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(13)
	acc.Balance = 200_000
	acc.PendingBet = 150_000
	acc.TotalWagered = 4_900_000
	acc.WinRateOverride = 0
	store.seed(acc)

	res, err := game.Settle(ctx, 13, &models.BetRequest{
		GameKind:  models.GameKindSize,
		Selection: models.SelectionHigh,
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.VIPMessage == "" {
		t.Error("expected a VIP progression message")
	}

	stored := store.account(t, 13)
	if stored.VIPTier != 1 {
		t.Errorf("vip tier = %d, want 1", stored.VIPTier)
	}
	// 200000 - 150000 loss + 23456 tier reward.
	if stored.Balance != 73_456 {
		t.Errorf("balance = %d, want 73456", stored.Balance)
	}
}

func TestSettleGuards(t *testing.T) {
	game, store, _ := newGameFixture(t, []models.Block{{Number: 1, Hash: "a2"}})
	ctx := context.Background()

	req := &models.BetRequest{GameKind: models.GameKindSize, Selection: models.SelectionHigh}

	if _, err := game.Settle(ctx, 20, req); !errors.Is(err, services.ErrNoStake) {
		t.Errorf("no stake err = %v, want ErrNoStake", err)
	}

	if _, err := game.Settle(ctx, 20, &models.BetRequest{GameKind: "roulette", Selection: "red"}); err == nil {
		t.Error("invalid game kind accepted")
	}

	if err := store.SetSetting(ctx, services.SettingMaintenanceMode, true); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if _, err := game.Settle(ctx, 20, req); !errors.Is(err, services.ErrMaintenance) {
		t.Errorf("maintenance err = %v, want ErrMaintenance", err)
	}
}

func TestSettleBigWinNotification(t *testing.T) {
	blocks := []models.Block{{Number: 200, Hash: "ab7"}}
	game, store, notifier := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(987654321)
	acc.Balance = 100_000
	acc.PendingBet = 10_000 // at the default threshold
	acc.WinRateOverride = 100
	store.seed(acc)

	if _, err := game.Settle(ctx, 987654321, &models.BetRequest{
		GameKind:  models.GameKindSize,
		Selection: models.SelectionHigh,
	}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if notifier.count() != 1 {
		t.Fatalf("published events = %d, want 1", notifier.count())
	}
}

func TestSettleDuoPayout(t *testing.T) {
	blocks := []models.Block{{Number: 5, Hash: "a4b2"}} // duo result 42
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	acc := models.NewAccount(30)
	acc.Balance = 10_000
	acc.PendingBet = 1_000
	acc.WinRateOverride = 100
	store.seed(acc)

	res, err := game.Settle(ctx, 30, &models.BetRequest{
		GameKind:  models.GameKindDuo,
		Selection: "42",
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !res.Won {
		t.Fatal("forced duo win lost")
	}
	// 1000 * 70 - 1000 staked.
	if res.Delta != 69_000 {
		t.Errorf("delta = %d, want 69000", res.Delta)
	}
	if stored := store.account(t, 30); stored.Balance != 79_000 {
		t.Errorf("balance = %d, want 79000", stored.Balance)
	}
}

func TestSettleDuoPayoutOverride(t *testing.T) {
	blocks := []models.Block{{Number: 5, Hash: "a4b2"}} // duo result 42
	game, store, _ := newGameFixture(t, blocks)
	ctx := context.Background()

	if err := store.SetSetting(ctx, services.SettingPayoutRateDuo, 50.0); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	// The binary rate must not bleed into the duo grid.
	if err := store.SetSetting(ctx, services.SettingPayoutRate, 1.5); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	acc := models.NewAccount(31)
	acc.Balance = 10_000
	acc.PendingBet = 1_000
	acc.WinRateOverride = 100
	store.seed(acc)

	res, err := game.Settle(ctx, 31, &models.BetRequest{
		GameKind:  models.GameKindDuo,
		Selection: "42",
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !res.Won {
		t.Fatal("forced duo win lost")
	}
	// 1000 * 50 - 1000 staked.
	if res.Delta != 49_000 {
		t.Errorf("delta = %d, want 49000", res.Delta)
	}
}
