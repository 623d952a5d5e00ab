package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"blockbet-backend/internal/models"
)

// ActivityFeed publishes synthetic win, deposit and withdrawal events on the
// live channel at jittered intervals so the public feed never looks idle.
type ActivityFeed struct {
	notifier Notifier
	log      zerolog.Logger
}

func NewActivityFeed(notifier Notifier, log zerolog.Logger) *ActivityFeed {
	return &ActivityFeed{
		notifier: notifier,
		log:      log.With().Str("component", "feed").Logger(),
	}
}

type activityEvent struct {
	Kind    string `json:"kind"`
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
	Game    string `json:"game,omitempty"`
}

// Run emits events until ctx is cancelled. The delay between events is
// uniform in [60s, 3600s].
func (f *ActivityFeed) Run(ctx context.Context) {
	timer := time.NewTimer(f.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			f.notifier.Notify(NotifyTargetLive, f.randomEvent())
			timer.Reset(f.nextDelay())
		}
	}
}

func (f *ActivityFeed) nextDelay() time.Duration {
	return time.Duration(60+rand.Intn(3541)) * time.Second
}

// randomEvent picks win 50%, deposit 30%, withdraw 20%.
func (f *ActivityFeed) randomEvent() *activityEvent {
	account := models.MaskAccountID(int64(rand.Intn(900_000_000) + 100_000_000))

	switch roll := rand.Intn(100); {
	case roll < 50:
		games := []string{string(models.GameKindSize), string(models.GameKindParity), string(models.GameKindDuo)}
		return &activityEvent{
			Kind:    "win",
			Account: account,
			Amount:  int64(rand.Intn(491)+10) * 1000,
			Game:    games[rand.Intn(len(games))],
		}
	case roll < 80:
		return &activityEvent{
			Kind:    "deposit",
			Account: account,
			Amount:  int64(rand.Intn(96)+5) * 10_000,
		}
	default:
		return &activityEvent{
			Kind:    "withdraw",
			Account: account,
			Amount:  int64(rand.Intn(46)+5) * 10_000,
		}
	}
}
