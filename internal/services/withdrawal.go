package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// WithdrawalService runs the pending -> approved | rejected lifecycle. Funds
// are escrowed at request creation: the balance is debited immediately so
// concurrent requests can never double-spend, and only a rejection credits
// the amount back.
type WithdrawalService struct {
	ledger    *Ledger
	store     WithdrawalStore
	audit     *AuditLog
	txs       TransactionRecorder
	minAmount int64
	log       zerolog.Logger

	// mu serializes status transitions so a request moves out of pending
	// exactly once.
	mu sync.Mutex
}

func NewWithdrawalService(ledger *Ledger, store WithdrawalStore, audit *AuditLog, txs TransactionRecorder, minAmount int64, log zerolog.Logger) *WithdrawalService {
	return &WithdrawalService{
		ledger:    ledger,
		store:     store,
		audit:     audit,
		txs:       txs,
		minAmount: minAmount,
		log:       log.With().Str("component", "withdrawal").Logger(),
	}
}

// Create debits the amount and files a pending request. bank overrides the
// linked payout destination when non-nil.
func (s *WithdrawalService) Create(ctx context.Context, accountID int64, amount int64, bank *models.BankInfo) (*models.WithdrawalRequest, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < s.minAmount {
		return nil, ErrBelowMinimum
	}

	var ferr error
	var req *models.WithdrawalRequest

	_, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.Banned(time.Now()) {
			ferr = ErrAccountBanned
			return false
		}

		dest := bank
		if dest == nil {
			dest = acc.BankInfo
		}
		if dest == nil {
			ferr = ErrNoBankLinked
			return false
		}
		if acc.WagerRequirement > 0 {
			ferr = ErrWagerRequired
			return false
		}
		if amount > acc.Balance {
			ferr = ErrInsufficientBalance
			return false
		}

		now := time.Now()
		acc.Balance -= amount
		acc.TotalWithdrawn += amount

		req = &models.WithdrawalRequest{
			ID:        models.GenerateWithdrawalID(accountID, now),
			AccountID: accountID,
			Amount:    amount,
			Bank:      *dest,
			CreatedAt: now.Unix(),
			Status:    models.WithdrawalStatusPending,
		}

		entry := fmt.Sprintf("%s | -%s | pending | #%s",
			now.Format("15:04 02/01"), models.FormatAmount(amount), req.ID)
		acc.WithdrawalHistory = models.AppendHistory(acc.WithdrawalHistory, entry)
		return true
	})
	if err != nil {
		return nil, err
	}
	if ferr != nil {
		return nil, ferr
	}

	if err := s.store.SaveWithdrawal(ctx, req); err != nil {
		// Funds are already escrowed; surface the fault so the operator can
		// reconcile from the account history entry.
		s.log.Error().Err(err).Str("withdrawal_id", req.ID).Msg("failed to persist withdrawal request")
		return req, fmt.Errorf("failed to persist withdrawal request: %w", err)
	}

	s.audit.LogTransaction(accountID, models.TransactionTypeWithdraw, amount, req.Bank.Bank, models.WithdrawalStatusPending)
	s.recordTransaction(ctx, accountID, models.TransactionTypeWithdraw, amount,
		fmt.Sprintf("withdrawal %s pending", req.ID))

	return req, nil
}

// Approve marks a pending request approved. Funds were debited at creation,
// so this is a status change plus a history rewrite only.
func (s *WithdrawalService) Approve(ctx context.Context, id string) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WithdrawalStatusPending {
		return nil, ErrWithdrawalNotPending
	}

	w.Status = models.WithdrawalStatusApproved
	if err := s.store.SaveWithdrawal(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	_, _, err = s.ledger.Execute(ctx, w.AccountID, func(acc *models.Account) bool {
		return rewriteHistoryEntry(acc.WithdrawalHistory, w.ID, "success")
	})
	if err != nil {
		s.log.Warn().Err(err).Str("withdrawal_id", id).Msg("failed to rewrite withdrawal history")
	}

	s.audit.LogTransaction(w.AccountID, models.TransactionTypeWithdraw, w.Amount, w.Bank.Bank, models.WithdrawalStatusApproved)
	return w, nil
}

// Reject marks a pending request rejected and refunds the escrowed amount,
// reversing the cumulative withdrawn counter.
func (s *WithdrawalService) Reject(ctx context.Context, id, reason string) (*models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.GetWithdrawal(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status != models.WithdrawalStatusPending {
		return nil, ErrWithdrawalNotPending
	}

	w.Status = models.WithdrawalStatusRejected
	if err := s.store.SaveWithdrawal(ctx, w); err != nil {
		return nil, fmt.Errorf("failed to update withdrawal: %w", err)
	}

	_, _, err = s.ledger.Execute(ctx, w.AccountID, func(acc *models.Account) bool {
		acc.Balance += w.Amount
		acc.TotalWithdrawn -= w.Amount
		if acc.TotalWithdrawn < 0 {
			acc.TotalWithdrawn = 0
		}
		rewriteHistoryEntry(acc.WithdrawalHistory, w.ID, "rejected: "+reason)
		return true
	})
	if err != nil {
		return w, fmt.Errorf("failed to refund withdrawal: %w", err)
	}

	s.audit.LogTransaction(w.AccountID, models.TransactionTypeRefund, w.Amount, w.Bank.Bank, models.WithdrawalStatusRejected)
	s.recordTransaction(ctx, w.AccountID, models.TransactionTypeRefund, w.Amount,
		fmt.Sprintf("withdrawal %s rejected: %s", w.ID, reason))
	return w, nil
}

func (s *WithdrawalService) List(ctx context.Context, status string) ([]*models.WithdrawalRequest, error) {
	return s.store.ListWithdrawals(ctx, status)
}

func (s *WithdrawalService) recordTransaction(ctx context.Context, accountID int64, txType models.TransactionType, amount int64, desc string) {
	tx := &models.Transaction{
		ID:          models.GenerateTransactionID(),
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: desc,
		CreatedAt:   time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to record withdrawal transaction")
	}
}

// rewriteHistoryEntry replaces the "pending" status of the history line
// tagged with the request id. Returns false when the line was already
// evicted past the history cap.
func rewriteHistoryEntry(history []string, id, status string) bool {
	tag := "#" + id
	for i, entry := range history {
		if strings.Contains(entry, tag) && strings.Contains(entry, "| pending |") {
			history[i] = strings.Replace(entry, "| pending |", "| "+status+" |", 1)
			return true
		}
	}
	return false
}
