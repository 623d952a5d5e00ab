package models

import "fmt"

type GameKind string

const (
	GameKindSize   GameKind = "size"   // low (0-4) / high (5-9)
	GameKindParity GameKind = "parity" // even / odd
	GameKindDuo    GameKind = "duo"    // two-digit 00-99
)

const (
	SelectionLow  = "low"
	SelectionHigh = "high"
	SelectionEven = "even"
	SelectionOdd  = "odd"
)

// Block is one externally sourced signal: a chain block number and its hash.
type Block struct {
	Number int64  `json:"number"`
	Hash   string `json:"hash"`
}

type BetRequest struct {
	GameKind  GameKind `json:"game_kind" binding:"required"`
	Selection string   `json:"selection" binding:"required"`
}

func (br *BetRequest) Validate() error {
	switch br.GameKind {
	case GameKindSize:
		if br.Selection != SelectionLow && br.Selection != SelectionHigh {
			return fmt.Errorf("invalid selection %q for size game", br.Selection)
		}
	case GameKindParity:
		if br.Selection != SelectionEven && br.Selection != SelectionOdd {
			return fmt.Errorf("invalid selection %q for parity game", br.Selection)
		}
	case GameKindDuo:
		if len(br.Selection) != 2 || !isDigit(br.Selection[0]) || !isDigit(br.Selection[1]) {
			return fmt.Errorf("invalid selection %q for duo game, want 00-99", br.Selection)
		}
	default:
		return fmt.Errorf("invalid game kind: %s", br.GameKind)
	}
	return nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// DefaultPayoutRate is the multiplier applied to a winning stake.
func DefaultPayoutRate(kind GameKind) float64 {
	if kind == GameKindDuo {
		return 70.0
	}
	return 1.95
}

// SettlementResult is what a resolved bet returns to the caller, formatted
// after the ledger commit.
type SettlementResult struct {
	GameKind    GameKind `json:"game_kind"`
	Selection   string   `json:"selection"`
	BlockNumber int64    `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	Result      int      `json:"result"`
	OutcomeKey  string   `json:"outcome_key"`
	Won         bool     `json:"won"`
	Stake       int64    `json:"stake"`
	Delta       int64    `json:"delta"` // net amount gained (won) or lost
	NewBalance  int64    `json:"new_balance"`
	VIPMessage  string   `json:"vip_message,omitempty"`
}
