package services

// VIPLevel pairs the cumulative wager required to reach a tier with the
// one-time reward credited on reaching it.
type VIPLevel struct {
	Tier          int
	RequiredWager int64
	Reward        int64
}

// VIPLevels is ordered ascending by tier. An account can jump several tiers
// in one settlement and collects every skipped tier's reward.
var VIPLevels = []VIPLevel{
	{1, 5_000_000, 23_456},
	{2, 11_000_000, 59_999},
	{3, 20_000_000, 99_999},
	{4, 35_000_000, 158_888},
	{5, 50_000_000, 222_222},
	{6, 85_000_000, 333_333},
	{7, 120_000_000, 444_444},
	{8, 150_000_000, 555_555},
	{9, 210_000_000, 888_888},
	{10, 300_000_000, 1_234_567},
}

// ProgressVIP returns the tier the account qualifies for after wagering
// totalWagered and the summed rewards for every newly reached tier. The tier
// never decreases.
func ProgressVIP(totalWagered int64, currentTier int) (int, int64) {
	newTier := currentTier
	var reward int64
	for _, lvl := range VIPLevels {
		if totalWagered >= lvl.RequiredWager && lvl.Tier > currentTier {
			reward += lvl.Reward
			newTier = lvl.Tier
		}
	}
	return newTier, reward
}
