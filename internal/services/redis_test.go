package services_test

import (
	"context"
	"testing"
	"time"

	"blockbet-backend/internal/config"
	"blockbet-backend/internal/models"
	"blockbet-backend/internal/services"
)

func TestRedisService(t *testing.T) {
	cfg := &config.Config{
		RedisURL:  "localhost:6379",
		RedisPass: "",
		RedisDB:   0,
	}

	redisService, err := services.NewRedisService(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer redisService.Close()

	ctx := context.Background()
	accountID := int64(999999)
	defer redisService.DeleteAccount(ctx, accountID)

	acc, err := redisService.GetOrCreateAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if acc.Balance != 0 || acc.WinRateOverride != -1 {
		t.Errorf("fresh account = balance %d override %d", acc.Balance, acc.WinRateOverride)
	}

	acc.Balance = 25_000
	acc.BetHistory = models.AppendHistory(acc.BetHistory, "12:00 | SIZE-high | WIN 1,000")
	if err := redisService.SaveAccount(ctx, acc); err != nil {
		t.Fatalf("Failed to save account: %v", err)
	}

	reloaded, err := redisService.GetOrCreateAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("Failed to reload account: %v", err)
	}
	if reloaded.Balance != 25_000 {
		t.Errorf("reloaded balance = %d, want 25000", reloaded.Balance)
	}
	if len(reloaded.BetHistory) != 1 {
		t.Errorf("reloaded history length = %d, want 1", len(reloaded.BetHistory))
	}

	w := &models.WithdrawalRequest{
		ID:        models.GenerateWithdrawalID(accountID, time.Now()),
		AccountID: accountID,
		Amount:    50_000,
		Bank:      models.BankInfo{Bank: "ACB", Number: "1", Holder: "T"},
		CreatedAt: time.Now().Unix(),
		Status:    models.WithdrawalStatusPending,
	}
	if err := redisService.SaveWithdrawal(ctx, w); err != nil {
		t.Fatalf("Failed to save withdrawal: %v", err)
	}
	defer redisService.DeleteWithdrawal(ctx, w.ID)

	got, err := redisService.GetWithdrawal(ctx, w.ID)
	if err != nil {
		t.Fatalf("Failed to get withdrawal: %v", err)
	}
	if got.Amount != 50_000 || got.Status != models.WithdrawalStatusPending {
		t.Errorf("withdrawal = %+v", got)
	}

	// Moving to approved must leave the pending index.
	w.Status = models.WithdrawalStatusApproved
	if err := redisService.SaveWithdrawal(ctx, w); err != nil {
		t.Fatalf("Failed to update withdrawal: %v", err)
	}
	pending, err := redisService.ListWithdrawals(ctx, models.WithdrawalStatusPending)
	if err != nil {
		t.Fatalf("Failed to list withdrawals: %v", err)
	}
	for _, p := range pending {
		if p.ID == w.ID {
			t.Error("approved withdrawal still listed as pending")
		}
	}

	gc := &models.GiftCode{Code: "ITEST", Amount: 1_000, Quantity: 1}
	if err := redisService.SaveGiftCode(ctx, gc); err != nil {
		t.Fatalf("Failed to save gift code: %v", err)
	}
	defer redisService.DeleteGiftCode(ctx, gc.Code)

	if used, err := redisService.IncrementGiftCodeUsage(ctx, gc.Code, 1); err != nil {
		t.Fatalf("Failed to bump gift code usage: %v", err)
	} else if used != 1 {
		t.Errorf("bumped usage = %d, want 1", used)
	}
	gotGC, err := redisService.GetGiftCode(ctx, gc.Code)
	if err != nil {
		t.Fatalf("Failed to get gift code: %v", err)
	}
	if gotGC.Used != 1 {
		t.Errorf("gift code used = %d, want 1", gotGC.Used)
	}

	allowed, err := redisService.CheckRateLimit(ctx, accountID, "test", 5, time.Minute)
	if err != nil {
		t.Errorf("Failed to check rate limit: %v", err)
	}
	if !allowed {
		t.Error("First action should be allowed")
	}
	redisService.ClearRateLimit(ctx, accountID, "test")
}
