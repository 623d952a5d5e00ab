package services

import "time"

const (
	KeyAccount             = "account:%d"
	KeyAccountIndex        = "accounts"
	KeyWithdrawal          = "withdrawal:%s"
	KeyWithdrawalIndex     = "withdrawals:%s" // per-status id sets
	KeyGiftCode            = "giftcode:%s"
	KeyGiftCodeIndex       = "giftcodes"
	KeySetting             = "setting:%s"
	KeyTransaction         = "transaction:%s"
	KeyAccountTransactions = "account:%d:transactions"
	KeyRateLimit           = "ratelimit:%d:%s"

	TTLTransaction = 30 * 24 * time.Hour

	// Keep only this many transaction records per account.
	transactionIndexCap = 100
)
