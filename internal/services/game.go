package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// candidatePoolSize is how many recent blocks the resolver considers.
const candidatePoolSize = 15

// GameService stages stakes and settles bets. A settlement decides win/lose
// up front from the effective win rate, asks the resolver for a block whose
// derived outcome agrees with that decision, and applies the whole monetary
// effect in one ledger call.
type GameService struct {
	ledger   *Ledger
	feed     SignalSupplier
	settings SettingsStore
	notifier Notifier
	audit    *AuditLog
	txs      TransactionRecorder
	log      zerolog.Logger
}

func NewGameService(ledger *Ledger, feed SignalSupplier, settings SettingsStore, notifier Notifier, audit *AuditLog, txs TransactionRecorder, log zerolog.Logger) *GameService {
	return &GameService{
		ledger:   ledger,
		feed:     feed,
		settings: settings,
		notifier: notifier,
		audit:    audit,
		txs:      txs,
		log:      log.With().Str("component", "game").Logger(),
	}
}

// AddStake stages amount on top of the current pending bet. The staged total
// can never exceed the balance.
func (s *GameService) AddStake(ctx context.Context, accountID int64, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var ferr error
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.Banned(time.Now()) {
			ferr = ErrAccountBanned
			return false
		}
		if acc.PendingBet+amount > acc.Balance {
			ferr = ErrInsufficientBalance
			return false
		}
		acc.PendingBet += amount
		return true
	})
	if err != nil {
		return acc, err
	}
	if ferr != nil {
		return nil, ferr
	}
	return acc, nil
}

// StakeAll stages the entire balance.
func (s *GameService) StakeAll(ctx context.Context, accountID int64) (*models.Account, error) {
	var ferr error
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		if acc.Banned(time.Now()) {
			ferr = ErrAccountBanned
			return false
		}
		acc.PendingBet = acc.Balance
		return true
	})
	if err != nil {
		return acc, err
	}
	if ferr != nil {
		return nil, ferr
	}
	return acc, nil
}

// ResetStake clears the pending bet before resolution. There is no mid-flight
// cancellation once Settle has been called.
func (s *GameService) ResetStake(ctx context.Context, accountID int64) (*models.Account, error) {
	acc, _, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		acc.PendingBet = 0
		return true
	})
	return acc, err
}

type bigWinEvent struct {
	Kind    string          `json:"kind"`
	Account string          `json:"account"`
	Game    models.GameKind `json:"game"`
	Amount  int64           `json:"amount"`
}

// Settle resolves the staked bet. The stake checks outside the ledger call
// give early feedback; the checks inside the mutation are the authoritative
// guard.
func (s *GameService) Settle(ctx context.Context, accountID int64, req *models.BetRequest) (*models.SettlementResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if BoolSetting(ctx, s.settings, SettingMaintenanceMode, false) {
		return nil, ErrMaintenance
	}

	acc, err := s.ledger.Load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc.Banned(time.Now()) {
		return nil, ErrAccountBanned
	}
	if acc.PendingBet <= 0 {
		return nil, ErrNoStake
	}
	if acc.PendingBet > acc.Balance {
		return nil, ErrInsufficientBalance
	}

	globalRate := IntSetting(ctx, s.settings, SettingGlobalWinRate, DefaultGlobalWinRate)
	winRate := acc.EffectiveWinRate(globalRate)
	shouldWin := RollWinDecision(winRate)

	candidates := s.feed.FetchRecent(ctx, candidatePoolSize)
	block, result, outcomeKey := Resolve(req.GameKind, req.Selection, candidates, shouldWin)
	won := req.Selection == outcomeKey

	payoutRate := FloatSetting(ctx, s.settings, PayoutRateKey(req.GameKind), models.DefaultPayoutRate(req.GameKind))
	bigWinThreshold := int64(IntSetting(ctx, s.settings, SettingBigWinThreshold, DefaultBigWinThreshold))

	res := &models.SettlementResult{
		GameKind:    req.GameKind,
		Selection:   req.Selection,
		BlockNumber: block.Number,
		BlockHash:   block.Hash,
		Result:      result,
		OutcomeKey:  outcomeKey,
		Won:         won,
	}

	var ferr error
	var publicEvent *bigWinEvent

	final, committed, err := s.ledger.Execute(ctx, accountID, func(acc *models.Account) bool {
		stake := acc.PendingBet
		if stake <= 0 {
			ferr = ErrNoStake
			return false
		}
		if stake > acc.Balance {
			ferr = ErrInsufficientBalance
			return false
		}

		res.Stake = stake
		if won {
			winAmount := int64(float64(stake) * payoutRate)
			res.Delta = winAmount - stake
			acc.Balance += res.Delta
		} else {
			res.Delta = stake
			acc.Balance -= stake
		}

		acc.TotalWagered += stake
		acc.WagerRequirement -= stake
		if acc.WagerRequirement < 0 {
			acc.WagerRequirement = 0
		}

		newTier, reward := ProgressVIP(acc.TotalWagered, acc.VIPTier)
		if reward > 0 {
			acc.Balance += reward
			res.VIPMessage = fmt.Sprintf("VIP %d reached, +%s", newTier, models.FormatAmount(reward))
		}
		acc.VIPTier = newTier

		outcome := "LOSS"
		if won {
			outcome = "WIN"
		}
		entry := fmt.Sprintf("%s | %s-%s | %s %s",
			time.Now().Format("15:04"),
			strings.ToUpper(string(req.GameKind)), req.Selection,
			outcome, models.FormatAmount(stake))
		acc.BetHistory = models.AppendHistory(acc.BetHistory, entry)

		if won && stake >= bigWinThreshold {
			publicEvent = &bigWinEvent{
				Kind:    "big_win",
				Account: models.MaskAccountID(acc.ID),
				Game:    req.GameKind,
				Amount:  stake,
			}
		}

		acc.PendingBet = 0
		return true
	})
	if err != nil {
		if committed {
			// Mutation applied but persistence is uncertain; return the
			// in-memory result for best-effort display alongside the error.
			res.NewBalance = final.Balance
			return res, err
		}
		return nil, err
	}
	if ferr != nil {
		return nil, ferr
	}
	res.NewBalance = final.Balance

	// Staged effects are dispatched only after the lock is released.
	if publicEvent != nil {
		s.notifier.Notify(NotifyTargetLive, publicEvent)
	}

	winAmount := int64(0)
	txType := models.TransactionTypeBet
	if won {
		winAmount = res.Delta
		txType = models.TransactionTypeWin
	}
	s.audit.LogGame(accountID, req.GameKind, res.Stake, req.Selection,
		fmt.Sprintf("%d (%s)", result, outcomeKey), winAmount, final.Balance)

	tx := &models.Transaction{
		ID:           models.GenerateTransactionID(),
		AccountID:    accountID,
		Type:         txType,
		Amount:       res.Delta,
		BalanceAfter: final.Balance,
		Description:  fmt.Sprintf("%s %s on block %d", outcomeString(won), req.GameKind, block.Number),
		CreatedAt:    time.Now(),
	}
	if err := s.txs.SaveTransaction(ctx, tx); err != nil {
		s.log.Warn().Err(err).Int64("account_id", accountID).Msg("failed to record settlement transaction")
	}

	return res, nil
}

func outcomeString(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
