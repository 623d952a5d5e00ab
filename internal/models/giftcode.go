package models

import "time"

// GiftCode is a redeemable reward coupon. Quantity 0 means unlimited uses;
// ExpiresAt 0 means no expiry.
type GiftCode struct {
	Code            string `json:"code" redis:"code"`
	Amount          int64  `json:"amount" redis:"amount"`
	Quantity        int    `json:"quantity" redis:"quantity"`
	Used            int    `json:"used" redis:"used"`
	WagerMultiplier int    `json:"wager_multiplier" redis:"wager_multiplier"`
	ExpiresAt       int64  `json:"expires_at,omitempty" redis:"expires_at"`
}

func (g *GiftCode) Expired(now time.Time) bool {
	return g.ExpiresAt > 0 && now.Unix() > g.ExpiresAt
}

func (g *GiftCode) Exhausted() bool {
	return g.Quantity > 0 && g.Used >= g.Quantity
}
