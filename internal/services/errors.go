package services

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrNoStake             = errors.New("no stake placed")
	ErrAccountBanned       = errors.New("account banned")
	ErrMaintenance         = errors.New("maintenance mode")
	ErrWagerRequired       = errors.New("wager requirement not met")
	ErrBelowMinimum        = errors.New("amount below minimum")
	ErrNoBankLinked        = errors.New("no payout destination linked")
	ErrInvalidBankInfo     = errors.New("invalid payout destination")
	ErrBonusClaimed        = errors.New("daily bonus already claimed")
	ErrInvalidWinRate      = errors.New("win rate out of range")

	ErrWithdrawalNotFound   = errors.New("withdrawal not found")
	ErrWithdrawalNotPending = errors.New("withdrawal not pending")

	ErrCodeNotFound    = errors.New("gift code not found")
	ErrCodeAlreadyUsed = errors.New("gift code already used")
	ErrCodeExpired     = errors.New("gift code expired")
	ErrCodeExhausted   = errors.New("gift code exhausted")
	ErrCodeExists      = errors.New("gift code already exists")

	ErrSettingNotFound = errors.New("setting not found")
)
