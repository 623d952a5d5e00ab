package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

const (
	// DailyBonusAmount is credited once per calendar day (server time).
	DailyBonusAmount int64 = 5000

	maxBankNameLen   = 50
	maxBankNumberLen = 30
	maxBankHolderLen = 50
)

// AccountService covers the self-service account surface: profile reads,
// payout destination linking and the daily bonus.
type AccountService struct {
	ledger *Ledger
	audit  *AuditLog
	txs    TransactionRecorder
	log    zerolog.Logger
}

func NewAccountService(ledger *Ledger, audit *AuditLog, txs TransactionRecorder, log zerolog.Logger) *AccountService {
	return &AccountService{
		ledger: ledger,
		audit:  audit,
		txs:    txs,
		log:    log.With().Str("component", "account").Logger(),
	}
}

func (s *AccountService) Profile(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.ledger.Load(ctx, accountID)
}

// LinkBank stores the payout destination on the account. Relinking replaces
// the previous destination.
func (s *AccountService) LinkBank(ctx context.Context, accountID int64, info models.BankInfo) (*models.Account, error) {
	info.Bank = strings.TrimSpace(info.Bank)
	info.Number = strings.TrimSpace(info.Number)
	info.Holder = strings.TrimSpace(info.Holder)

	if info.Bank == "" || info.Number == "" || info.Holder == "" {
		return nil, ErrInvalidBankInfo
	}
	if len(info.Bank) > maxBankNameLen || len(info.Number) > maxBankNumberLen || len(info.Holder) > maxBankHolderLen {
		return nil, ErrInvalidBankInfo
	}

	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.BankInfo = &info
		return true
	})
	return acc, err
}

// DailyBonus credits a fixed amount once per calendar day.
func (s *AccountService) DailyBonus(ctx context.Context, accountID int64) (*models.Account, error) {
	today := time.Now().Format("2006-01-02")

	var ferr error
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.Banned(time.Now()) {
			ferr = ErrAccountBanned
			return false
		}
		if acc.LastBonus == today {
			ferr = ErrBonusClaimed
			return false
		}
		acc.Balance += DailyBonusAmount
		acc.LastBonus = today
		return true
	})
	if err != nil {
		return acc, err
	}
	if ferr != nil {
		return nil, ferr
	}

	s.audit.LogTransaction(accountID, models.TransactionTypeBonus, DailyBonusAmount, "", "daily")
	tx := &models.Transaction{
		ID:           models.GenerateTransactionID(),
		AccountID:    accountID,
		Type:         models.TransactionTypeBonus,
		Amount:       DailyBonusAmount,
		BalanceAfter: acc.Balance,
		Description:  fmt.Sprintf("daily bonus %s", today),
		CreatedAt:    time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to record bonus transaction")
	}

	return acc, nil
}
