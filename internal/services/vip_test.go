package services_test

import (
	"testing"

	"blockbet-backend/internal/services"
)

func TestProgressVIPSingleTier(t *testing.T) {
	tier, reward := services.ProgressVIP(6_000_000, 0)
	if tier != 1 {
		t.Errorf("tier = %d, want 1", tier)
	}
	if reward != 23_456 {
		t.Errorf("reward = %d, want 23456", reward)
	}
}

func TestProgressVIPNoChange(t *testing.T) {
	tier, reward := services.ProgressVIP(4_900_000, 0)
	if tier != 0 || reward != 0 {
		t.Errorf("got (%d, %d), want (0, 0)", tier, reward)
	}

	// Already at tier 1, still below tier 2: no double reward.
	tier, reward = services.ProgressVIP(6_000_000, 1)
	if tier != 1 || reward != 0 {
		t.Errorf("got (%d, %d), want (1, 0)", tier, reward)
	}
}

func TestProgressVIPMultiTierJump(t *testing.T) {
	tier, reward := services.ProgressVIP(25_000_000, 0)
	if tier != 3 {
		t.Errorf("tier = %d, want 3", tier)
	}
	want := int64(23_456 + 59_999 + 99_999)
	if reward != want {
		t.Errorf("reward = %d, want %d", reward, want)
	}
}

func TestProgressVIPTopTier(t *testing.T) {
	tier, reward := services.ProgressVIP(300_000_000, 9)
	if tier != 10 {
		t.Errorf("tier = %d, want 10", tier)
	}
	if reward != 1_234_567 {
		t.Errorf("reward = %d, want 1234567", reward)
	}
}
