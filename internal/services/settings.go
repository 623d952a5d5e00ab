package services

import (
	"context"
	"encoding/json"

	"blockbet-backend/internal/models"
)

const (
	SettingGlobalWinRate   = "global_win_rate"
	SettingPayoutRate      = "payout_rate"
	SettingPayoutRateDuo   = "payout_rate_duo"
	SettingMaintenanceMode = "maintenance_mode"
	SettingBigWinThreshold = "big_win_threshold"

	DefaultGlobalWinRate   = 30
	DefaultBigWinThreshold = 10000
)

// PayoutRateKey maps a game kind to its payout setting key. The duo grid pays
// out on its own rate; the binary kinds share one.
func PayoutRateKey(kind models.GameKind) string {
	if kind == models.GameKindDuo {
		return SettingPayoutRateDuo
	}
	return SettingPayoutRate
}

// IntSetting reads an integer setting, returning def when the key is missing
// or malformed. Settlement reads tolerate stale or missing settings.
func IntSetting(ctx context.Context, store SettingsStore, key string, def int) int {
	raw, err := store.GetSetting(ctx, key)
	if err != nil {
		return def
	}
	var v int
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}

func FloatSetting(ctx context.Context, store SettingsStore, key string, def float64) float64 {
	raw, err := store.GetSetting(ctx, key)
	if err != nil {
		return def
	}
	var v float64
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}

func BoolSetting(ctx context.Context, store SettingsStore, key string, def bool) bool {
	raw, err := store.GetSetting(ctx, key)
	if err != nil {
		return def
	}
	var v bool
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}
