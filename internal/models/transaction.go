package models

import "time"

type TransactionType string

const (
	TransactionTypeBet      TransactionType = "bet"
	TransactionTypeWin      TransactionType = "win"
	TransactionTypeDeposit  TransactionType = "deposit"
	TransactionTypeWithdraw TransactionType = "withdraw"
	TransactionTypeRefund   TransactionType = "refund"
	TransactionTypeGiftCode TransactionType = "giftcode"
	TransactionTypeBonus    TransactionType = "bonus"
	TransactionTypeAdjust   TransactionType = "adjust"
)

// Transaction is a bookkeeping record kept alongside the account for the
// admin query surface. It is written best effort after a ledger commit.
type Transaction struct {
	ID           string          `json:"id" redis:"id"`
	AccountID    int64           `json:"account_id" redis:"account_id"`
	Type         TransactionType `json:"type" redis:"type"`
	Amount       int64           `json:"amount" redis:"amount"`
	BalanceAfter int64           `json:"balance_after" redis:"balance_after"`
	Description  string          `json:"description" redis:"description"`
	CreatedAt    time.Time       `json:"created_at" redis:"created_at"`
}
