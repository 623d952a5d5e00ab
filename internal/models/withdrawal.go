package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// WithdrawalRequest escrows funds at creation time; rejecting it refunds the
// amount, approving it changes status only.
type WithdrawalRequest struct {
	ID        string   `json:"id" redis:"id"`
	AccountID int64    `json:"account_id" redis:"account_id"`
	Amount    int64    `json:"amount" redis:"amount"`
	Bank      BankInfo `json:"bank" redis:"bank"`
	CreatedAt int64    `json:"created_at" redis:"created_at"`
	Status    string   `json:"status" redis:"status"`
}

// GenerateWithdrawalID stays unique even when one account files twice within
// the same second, so a later request can never overwrite an earlier record.
func GenerateWithdrawalID(accountID int64, at time.Time) string {
	return fmt.Sprintf("%d_%d_%s", accountID, at.Unix(), uuid.New().String()[:8])
}
