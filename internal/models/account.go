package models

import "time"

// HistoryCap bounds every per-account history list; the oldest entry is
// evicted once the cap is exceeded.
const HistoryCap = 15

type BankInfo struct {
	Bank   string `json:"bank" redis:"bank"`
	Number string `json:"number" redis:"number"`
	Holder string `json:"holder" redis:"holder"`
}

// Account is a user's monetary and progression record. It is created lazily
// with zero defaults on first access and mutated only through the ledger.
type Account struct {
	ID      int64 `json:"id" redis:"id"`
	Balance int64 `json:"balance" redis:"balance"`

	VIPTier        int   `json:"vip_tier" redis:"vip_tier"`
	TotalWagered   int64 `json:"total_wagered" redis:"total_wagered"`
	TotalDeposited int64 `json:"total_deposited" redis:"total_deposited"`
	TotalWithdrawn int64 `json:"total_withdrawn" redis:"total_withdrawn"`

	PendingBet       int64 `json:"pending_bet" redis:"pending_bet"`
	WagerRequirement int64 `json:"wager_requirement" redis:"wager_requirement"`

	// WinRateOverride in [0,100] forces this account's win rate; -1 defers
	// to the global setting.
	WinRateOverride int `json:"win_rate_override" redis:"win_rate_override"`

	LastBonus string `json:"last_bonus,omitempty" redis:"last_bonus"` // YYYY-MM-DD of last daily bonus

	BetHistory        []string `json:"bet_history" redis:"bet_history"`
	DepositHistory    []string `json:"deposit_history" redis:"deposit_history"`
	WithdrawalHistory []string `json:"withdrawal_history" redis:"withdrawal_history"`
	RedeemedCodes     []string `json:"redeemed_codes" redis:"redeemed_codes"`

	BannedUntil int64  `json:"banned_until,omitempty" redis:"banned_until"` // unix seconds, 0 = not banned
	BanReason   string `json:"ban_reason,omitempty" redis:"ban_reason"`

	BankInfo *BankInfo `json:"bank_info,omitempty" redis:"bank_info"`

	CreatedAt int64 `json:"created_at" redis:"created_at"`
	UpdatedAt int64 `json:"updated_at" redis:"updated_at"`
}

func NewAccount(id int64) *Account {
	now := time.Now().Unix()
	return &Account{
		ID:                id,
		WinRateOverride:   -1,
		BetHistory:        []string{},
		DepositHistory:    []string{},
		WithdrawalHistory: []string{},
		RedeemedCodes:     []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Banned reports whether the account is banned at the given instant.
func (a *Account) Banned(now time.Time) bool {
	return a.BannedUntil > 0 && a.BannedUntil > now.Unix()
}

// EffectiveWinRate resolves the win rate for a settlement: the per-account
// override when set, otherwise the global rate.
func (a *Account) EffectiveWinRate(globalRate int) int {
	if a.WinRateOverride >= 0 {
		return a.WinRateOverride
	}
	return globalRate
}

// HasRedeemed reports whether the account already consumed the gift code.
func (a *Account) HasRedeemed(code string) bool {
	for _, c := range a.RedeemedCodes {
		if c == code {
			return true
		}
	}
	return false
}

// AppendHistory appends entry to the list, evicting the oldest past HistoryCap.
func AppendHistory(list []string, entry string) []string {
	list = append(list, entry)
	if len(list) > HistoryCap {
		list = list[len(list)-HistoryCap:]
	}
	return list
}
