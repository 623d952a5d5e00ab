package services

import (
	"fmt"
	"math/rand"

	"blockbet-backend/internal/models"
)

// NumericResult derives the game result from a block hash. Binary kinds use
// the last decimal digit found scanning from the end; duo collects the last
// two digits and reassembles them in original left-to-right order.
func NumericResult(kind models.GameKind, hash string) int {
	if kind == models.GameKindDuo {
		ones, tens := -1, -1
		for i := len(hash) - 1; i >= 0; i-- {
			c := hash[i]
			if c < '0' || c > '9' {
				continue
			}
			if ones < 0 {
				ones = int(c - '0')
			} else {
				tens = int(c - '0')
				break
			}
		}
		if tens < 0 {
			return 0
		}
		return tens*10 + ones
	}

	for i := len(hash) - 1; i >= 0; i-- {
		if c := hash[i]; c >= '0' && c <= '9' {
			return int(c - '0')
		}
	}
	return 0
}

// OutcomeKey maps a numeric result to its canonical label for the kind.
func OutcomeKey(kind models.GameKind, result int) string {
	switch kind {
	case models.GameKindSize:
		if result <= 4 {
			return models.SelectionLow
		}
		return models.SelectionHigh
	case models.GameKindParity:
		if result%2 == 0 {
			return models.SelectionEven
		}
		return models.SelectionOdd
	default:
		return fmt.Sprintf("%02d", result)
	}
}

// Resolve picks a block from candidates whose outcome agrees with the
// declared win/lose decision for the given selection. The pick among matching
// candidates is uniform so repeated bets on one selection do not show the
// same block over and over. When nothing matches it falls back to the newest
// candidate; an empty pool yields a fixed sentinel.
func Resolve(kind models.GameKind, selection string, candidates []models.Block, shouldWin bool) (models.Block, int, string) {
	type match struct {
		block  models.Block
		result int
	}
	var matches []match

	for _, blk := range candidates {
		res := NumericResult(kind, blk.Hash)
		key := OutcomeKey(kind, res)
		if (shouldWin && key == selection) || (!shouldWin && key != selection) {
			matches = append(matches, match{blk, res})
		}
	}

	if len(matches) > 0 {
		m := matches[rand.Intn(len(matches))]
		return m.block, m.result, OutcomeKey(kind, m.result)
	}

	if len(candidates) > 0 {
		blk := candidates[0]
		res := NumericResult(kind, blk.Hash)
		return blk, res, OutcomeKey(kind, res)
	}

	sentinel := models.Block{Number: 0, Hash: "0000"}
	return sentinel, 0, OutcomeKey(kind, 0)
}

// RollWinDecision draws the predetermined win/lose decision for a settlement.
func RollWinDecision(winRate int) bool {
	return rand.Intn(100)+1 <= winRate
}
