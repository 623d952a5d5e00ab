package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// AdminService is the operator surface: balance adjustments, deposits, bans,
// per-account overrides and the global settings knobs. Every action is written
// to the admin audit trail.
type AdminService struct {
	ledger      *Ledger
	accounts    AccountStore
	withdrawals WithdrawalStore
	settings    SettingsStore
	audit       *AuditLog
	txs         TransactionRecorder
	log         zerolog.Logger
}

func NewAdminService(ledger *Ledger, accounts AccountStore, withdrawals WithdrawalStore, settings SettingsStore, audit *AuditLog, txs TransactionRecorder, log zerolog.Logger) *AdminService {
	return &AdminService{
		ledger:      ledger,
		accounts:    accounts,
		withdrawals: withdrawals,
		settings:    settings,
		audit:       audit,
		txs:         txs,
		log:         log.With().Str("component", "admin").Logger(),
	}
}

// Deposit credits a manually confirmed deposit. The full amount is added to
// the wager requirement, so deposited funds must be wagered once before they
// can be withdrawn.
func (s *AdminService) Deposit(ctx context.Context, adminID, accountID, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.Balance += amount
		acc.TotalDeposited += amount
		acc.WagerRequirement += amount

		entry := fmt.Sprintf("%s | +%s | confirmed",
			time.Now().Format("15:04 02/01"), models.FormatAmount(amount))
		acc.DepositHistory = models.AppendHistory(acc.DepositHistory, entry)
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "deposit", accountID, models.FormatAmount(amount))
	s.recordTransaction(ctx, accountID, models.TransactionTypeDeposit, amount, acc.Balance, "deposit confirmed")
	return acc, nil
}

// AdjustBalance applies a signed correction. A negative delta larger than the
// balance is refused rather than driving the account below zero.
func (s *AdminService) AdjustBalance(ctx context.Context, adminID, accountID, delta int64) (*models.Account, error) {
	if delta == 0 {
		return nil, ErrInvalidAmount
	}

	var ferr error
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.Balance+delta < 0 {
			ferr = ErrInsufficientBalance
			return false
		}
		acc.Balance += delta
		return true
	})
	if err != nil {
		return acc, err
	}
	if ferr != nil {
		return nil, ferr
	}

	s.audit.LogAdminAction(adminID, "adjust_balance", accountID, models.FormatAmount(delta))
	s.recordTransaction(ctx, accountID, models.TransactionTypeAdjust, delta, acc.Balance, "manual adjustment")
	return acc, nil
}

// Ban blocks the account until the given time and clears any staged bet.
func (s *AdminService) Ban(ctx context.Context, adminID, accountID int64, until time.Time, reason string) (*models.Account, error) {
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.BannedUntil = until.Unix()
		acc.BanReason = reason
		acc.PendingBet = 0
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "ban", accountID,
		fmt.Sprintf("until %s: %s", until.Format(time.RFC3339), reason))
	return acc, nil
}

func (s *AdminService) Unban(ctx context.Context, adminID, accountID int64) (*models.Account, error) {
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.BannedUntil = 0
		acc.BanReason = ""
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "unban", accountID, "")
	return acc, nil
}

// SetWinRate sets the per-account win rate override. -1 defers to the global
// rate; 0 through 100 pins the rate.
func (s *AdminService) SetWinRate(ctx context.Context, adminID, accountID int64, rate int) (*models.Account, error) {
	if rate < -1 || rate > 100 {
		return nil, ErrInvalidWinRate
	}

	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.WinRateOverride = rate
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "set_win_rate", accountID, fmt.Sprintf("%d", rate))
	return acc, nil
}

// ProfileEdit carries the optional per-account fields an operator may rewrite.
// Nil fields are left untouched.
type ProfileEdit struct {
	VIPTier          *int   `json:"vip_tier"`
	WinRateOverride  *int   `json:"win_rate_override"`
	WagerRequirement *int64 `json:"wager_requirement"`
}

func (s *AdminService) EditProfile(ctx context.Context, adminID, accountID int64, edit ProfileEdit) (*models.Account, error) {
	if edit.WinRateOverride != nil && (*edit.WinRateOverride < -1 || *edit.WinRateOverride > 100) {
		return nil, ErrInvalidWinRate
	}
	if edit.VIPTier != nil && (*edit.VIPTier < 0 || *edit.VIPTier > len(VIPLevels)) {
		return nil, ErrInvalidAmount
	}
	if edit.WagerRequirement != nil && *edit.WagerRequirement < 0 {
		return nil, ErrInvalidAmount
	}

	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if edit.VIPTier != nil {
			acc.VIPTier = *edit.VIPTier
		}
		if edit.WinRateOverride != nil {
			acc.WinRateOverride = *edit.WinRateOverride
		}
		if edit.WagerRequirement != nil {
			acc.WagerRequirement = *edit.WagerRequirement
		}
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "edit_profile", accountID, fmt.Sprintf("%+v", edit))
	return acc, nil
}

// ResetWagered zeroes the cumulative wagered counter, restarting VIP
// progression for the account.
func (s *AdminService) ResetWagered(ctx context.Context, adminID, accountID int64) (*models.Account, error) {
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.TotalWagered = 0
		return true
	})
	if err != nil {
		return acc, err
	}

	s.audit.LogAdminAction(adminID, "reset_wagered", accountID, "")
	return acc, nil
}

func (s *AdminService) SetGlobalWinRate(ctx context.Context, adminID int64, rate int) error {
	if rate < 0 || rate > 100 {
		return ErrInvalidWinRate
	}
	if err := s.settings.SetSetting(ctx, SettingGlobalWinRate, rate); err != nil {
		return fmt.Errorf("failed to set global win rate: %w", err)
	}
	s.audit.LogAdminAction(adminID, "set_global_win_rate", 0, fmt.Sprintf("%d", rate))
	return nil
}

func (s *AdminService) SetPayoutRate(ctx context.Context, adminID int64, kind models.GameKind, rate float64) error {
	if rate <= 1.0 {
		return ErrInvalidAmount
	}
	key := PayoutRateKey(kind)
	if err := s.settings.SetSetting(ctx, key, rate); err != nil {
		return fmt.Errorf("failed to set payout rate: %w", err)
	}
	s.audit.LogAdminAction(adminID, "set_payout_rate", 0, fmt.Sprintf("%s=%.2f", key, rate))
	return nil
}

func (s *AdminService) SetMaintenanceMode(ctx context.Context, adminID int64, on bool) error {
	if err := s.settings.SetSetting(ctx, SettingMaintenanceMode, on); err != nil {
		return fmt.Errorf("failed to set maintenance mode: %w", err)
	}
	s.audit.LogAdminAction(adminID, "set_maintenance", 0, fmt.Sprintf("%t", on))
	return nil
}

// Stats aggregates the whole account index. Profit is deposits minus funds
// paid out minus what users still hold.
type Stats struct {
	Accounts           int   `json:"accounts"`
	TotalBalance       int64 `json:"total_balance"`
	TotalDeposited     int64 `json:"total_deposited"`
	TotalWithdrawn     int64 `json:"total_withdrawn"`
	TotalWagered       int64 `json:"total_wagered"`
	Profit             int64 `json:"profit"`
	PendingWithdrawals int   `json:"pending_withdrawals"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	ids, err := s.accounts.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	st := &Stats{Accounts: len(ids)}
	for _, id := range ids {
		acc, err := s.accounts.GetOrCreateAccount(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Int64("account_id", id).Msg("failed to load account for stats")
			continue
		}
		st.TotalBalance += acc.Balance
		st.TotalDeposited += acc.TotalDeposited
		st.TotalWithdrawn += acc.TotalWithdrawn
		st.TotalWagered += acc.TotalWagered
	}
	st.Profit = st.TotalDeposited - st.TotalWithdrawn - st.TotalBalance

	pending, err := s.withdrawals.ListWithdrawals(ctx, models.WithdrawalStatusPending)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list pending withdrawals for stats")
	} else {
		st.PendingWithdrawals = len(pending)
	}

	return st, nil
}

type AccountSummary struct {
	ID           int64  `json:"id"`
	Balance      int64  `json:"balance"`
	VIPTier      int    `json:"vip_tier"`
	TotalWagered int64  `json:"total_wagered"`
	Masked       string `json:"masked"`
}

// TopBalances returns the n richest accounts, highest first.
func (s *AdminService) TopBalances(ctx context.Context, n int) ([]AccountSummary, error) {
	ids, err := s.accounts.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	summaries := make([]AccountSummary, 0, len(ids))
	for _, id := range ids {
		acc, err := s.accounts.GetOrCreateAccount(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, AccountSummary{
			ID:           acc.ID,
			Balance:      acc.Balance,
			VIPTier:      acc.VIPTier,
			TotalWagered: acc.TotalWagered,
			Masked:       models.MaskAccountID(acc.ID),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Balance > summaries[j].Balance
	})
	if n > 0 && len(summaries) > n {
		summaries = summaries[:n]
	}
	return summaries, nil
}

func (s *AdminService) recordTransaction(ctx context.Context, accountID int64, txType models.TransactionType, amount, balanceAfter int64, desc string) {
	tx := &models.Transaction{
		ID:           models.GenerateTransactionID(),
		AccountID:    accountID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Description:  desc,
		CreatedAt:    time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to record admin transaction")
	}
}
