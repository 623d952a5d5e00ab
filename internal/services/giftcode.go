package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

const (
	autoDropInterval = 30 * time.Minute
	autoDropExpiry   = 5 * time.Minute
)

// GiftCodeService owns the gift code registry. Account-side effects of a
// redemption go through the ledger; the registry usage counter is bumped
// after the commit, so a crash in between can under-count one use but never
// over-credit the account. The bump is an atomic increment with a recheck:
// when concurrent redeemers push the counter past the quantity, the losers
// are reversed and told the code is exhausted.
type GiftCodeService struct {
	ledger   *Ledger
	codes    GiftCodeStore
	notifier Notifier
	audit    *AuditLog
	txs      TransactionRecorder
	log      zerolog.Logger
}

func NewGiftCodeService(ledger *Ledger, codes GiftCodeStore, notifier Notifier, audit *AuditLog, txs TransactionRecorder, log zerolog.Logger) *GiftCodeService {
	return &GiftCodeService{
		ledger:   ledger,
		codes:    codes,
		notifier: notifier,
		audit:    audit,
		txs:      txs,
		log:      log.With().Str("component", "giftcode").Logger(),
	}
}

type RedeemResult struct {
	Code       string `json:"code"`
	Reward     int64  `json:"reward"`
	WagerAdded int64  `json:"wager_added"`
	NewBalance int64  `json:"new_balance"`
}

func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func (s *GiftCodeService) Redeem(ctx context.Context, accountID int64, rawCode string) (*RedeemResult, error) {
	code := NormalizeCode(rawCode)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	gc, err := s.codes.GetGiftCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var ferr error
	res := &RedeemResult{Code: code}

	final, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.HasRedeemed(code) {
			ferr = ErrCodeAlreadyUsed
			return false
		}
		if gc.Expired(time.Now()) {
			ferr = ErrCodeExpired
			return false
		}
		if gc.Exhausted() {
			ferr = ErrCodeExhausted
			return false
		}

		acc.Balance += gc.Amount
		acc.RedeemedCodes = append(acc.RedeemedCodes, code)

		wagerAdded := gc.Amount * int64(gc.WagerMultiplier)
		acc.WagerRequirement += wagerAdded

		res.Reward = gc.Amount
		res.WagerAdded = wagerAdded
		return true
	})
	if err != nil {
		return nil, err
	}
	if ferr != nil {
		return nil, ferr
	}
	res.NewBalance = final.Balance

	used, err := s.codes.IncrementGiftCodeUsage(ctx, code, 1)
	if err != nil {
		s.log.Error().Err(err).Str("code", code).Msg("failed to bump gift code usage")
	} else if gc.Quantity > 0 && used > gc.Quantity {
		// Another redeemer won the last use between the snapshot read and
		// the commit. Put the counter back at the cap and take the credit
		// back out of the account.
		if _, derr := s.codes.IncrementGiftCodeUsage(ctx, code, -1); derr != nil {
			s.log.Error().Err(derr).Str("code", code).Msg("failed to restore gift code usage")
		}
		if rerr := s.reverseRedeem(ctx, accountID, code, res); rerr != nil {
			s.log.Error().Err(rerr).Int64("account_id", accountID).Str("code", code).Msg("failed to reverse overdrawn redemption")
		}
		return nil, ErrCodeExhausted
	}

	s.audit.LogTransaction(accountID, models.TransactionTypeGiftCode, gc.Amount, code, "redeemed")
	tx := &models.Transaction{
		ID:           models.GenerateTransactionID(),
		AccountID:    accountID,
		Type:         models.TransactionTypeGiftCode,
		Amount:       gc.Amount,
		BalanceAfter: final.Balance,
		Description:  fmt.Sprintf("gift code %s redeemed", code),
		CreatedAt:    time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to record gift code transaction")
	}

	return res, nil
}

// reverseRedeem backs a credited redemption out of the account after the
// usage counter showed the code was already spent.
func (s *GiftCodeService) reverseRedeem(ctx context.Context, accountID int64, code string, res *RedeemResult) error {
	_, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.Balance -= res.Reward
		if acc.Balance < 0 {
			acc.Balance = 0
		}
		acc.WagerRequirement -= res.WagerAdded
		if acc.WagerRequirement < 0 {
			acc.WagerRequirement = 0
		}
		for i, c := range acc.RedeemedCodes {
			if c == code {
				acc.RedeemedCodes = append(acc.RedeemedCodes[:i], acc.RedeemedCodes[i+1:]...)
				break
			}
		}
		return true
	})
	return err
}

// Create registers a new code. ttl 0 means no expiry, quantity 0 unlimited.
func (s *GiftCodeService) Create(ctx context.Context, rawCode string, amount int64, quantity, wagerMultiplier int, ttl time.Duration) (*models.GiftCode, error) {
	code := NormalizeCode(rawCode)
	if code == "" || amount <= 0 || quantity < 0 || wagerMultiplier < 0 {
		return nil, ErrInvalidAmount
	}

	if _, err := s.codes.GetGiftCode(ctx, code); err == nil {
		return nil, ErrCodeExists
	} else if !errors.Is(err, ErrCodeNotFound) {
		return nil, err
	}

	gc := &models.GiftCode{
		Code:            code,
		Amount:          amount,
		Quantity:        quantity,
		WagerMultiplier: wagerMultiplier,
	}
	if ttl > 0 {
		gc.ExpiresAt = time.Now().Add(ttl).Unix()
	}

	if err := s.codes.SaveGiftCode(ctx, gc); err != nil {
		return nil, fmt.Errorf("failed to save gift code: %w", err)
	}
	return gc, nil
}

func (s *GiftCodeService) Delete(ctx context.Context, rawCode string) error {
	return s.codes.DeleteGiftCode(ctx, NormalizeCode(rawCode))
}

func (s *GiftCodeService) List(ctx context.Context) ([]*models.GiftCode, error) {
	return s.codes.ListGiftCodes(ctx)
}

type giftCodeDrop struct {
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	Amount    int64  `json:"amount"`
	Quantity  int    `json:"quantity"`
	ExpiresAt int64  `json:"expires_at"`
}

// AutoDrop mints a short-lived single-use code on an interval and announces
// it on the live feed. Runs until ctx is cancelled.
func (s *GiftCodeService) AutoDrop(ctx context.Context) {
	ticker := time.NewTicker(autoDropInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			code := randomCode(8)
			amount := int64(rand.Intn(9001) + 1000)

			gc, err := s.Create(ctx, code, amount, 1, 0, autoDropExpiry)
			if err != nil {
				s.log.Warn().Err(err).Msg("auto gift code drop failed")
				continue
			}

			s.notifier.Notify(NotifyTargetLive, &giftCodeDrop{
				Kind:      "giftcode_drop",
				Code:      gc.Code,
				Amount:    gc.Amount,
				Quantity:  gc.Quantity,
				ExpiresAt: gc.ExpiresAt,
			})
		}
	}
}

func randomCode(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	out := make([]byte, n)
	for i := range out {
		out[i] = chars[rand.Intn(len(chars))]
	}
	return string(out)
}
