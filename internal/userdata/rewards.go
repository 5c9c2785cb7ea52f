package userdata

import (
	"github.com/pictocat/pictocat/internal/rewards"
)

// EnvelopeResult describes a successful envelope purchase.
type EnvelopeResult struct {
	Envelope  rewards.Envelope
	Cost      int
	NewImages []rewards.Image
	LevelUps  []int
}

// UpgradeResult describes a successful upgrade purchase.
type UpgradeResult struct {
	Upgrade rewards.Upgrade
}

// GameResult is what a finished mini-game reports.
type GameResult struct {
	CoinsEarned int
	XPEarned    int
}

// GameReward describes what a game result granted after upgrades.
type GameReward struct {
	Coins    int
	XP       int
	LevelUps []int
}

// PurchaseEnvelope charges the envelope price at the current level, unlocks
// the drawn images and grants the envelope XP. When the catalog is fully
// unlocked the purchase is refused without charging.
func PurchaseEnvelope(d UserData, id rewards.EnvelopeID, catalog []rewards.Image, src rewards.Source) (UserData, EnvelopeResult, error) {
	env, err := rewards.LookupEnvelope(id)
	if err != nil {
		return d, EnvelopeResult{}, err
	}
	cost := rewards.EnvelopeCost(env, d.PlayerStats.Level)
	if d.Coins < cost {
		return d, EnvelopeResult{}, reject("purchase envelope", ErrInsufficientFunds)
	}

	drawn := rewards.DrawEnvelope(catalog, d.UnlockedSet(), env.ImageCount, src)
	if len(drawn) == 0 {
		return d, EnvelopeResult{}, reject("purchase envelope", ErrNothingToUnlock)
	}

	out := d.Clone()
	out.Coins -= cost
	ids := make([]int, len(drawn))
	for i, img := range drawn {
		ids[i] = img.ID
	}
	out.UnlockedImageIDs = unionIDs(out.UnlockedImageIDs, ids...)

	var levels []int
	out.PlayerStats, levels = rewards.ApplyXP(out.PlayerStats, env.XP, rewards.DefaultCurve)

	return out, EnvelopeResult{Envelope: env, Cost: cost, NewImages: drawn, LevelUps: levels}, nil
}

// UnlockImages merges image ids into the unlocked set. Applying the same ids
// twice leaves the set unchanged.
func UnlockImages(d UserData, ids ...int) UserData {
	out := d.Clone()
	out.UnlockedImageIDs = unionIDs(out.UnlockedImageIDs, ids...)
	return out
}

// PurchaseUpgrade buys a permanent upgrade once.
func PurchaseUpgrade(d UserData, id rewards.UpgradeID) (UserData, UpgradeResult, error) {
	up, err := rewards.LookupUpgrade(id)
	if err != nil {
		return d, UpgradeResult{}, err
	}
	switch {
	case d.HasUpgrade(id):
		return d, UpgradeResult{}, reject("purchase upgrade", ErrAlreadyPurchased)
	case d.PlayerStats.Level < up.LevelRequired:
		return d, UpgradeResult{}, reject("purchase upgrade", ErrLevelTooLow)
	case d.Coins < up.Cost:
		return d, UpgradeResult{}, reject("purchase upgrade", ErrInsufficientFunds)
	}

	out := d.Clone()
	out.Coins -= up.Cost
	out.PurchasedUpgrades = unionUpgrades(out.PurchasedUpgrades, id)
	return out, UpgradeResult{Upgrade: up}, nil
}

// ApplyGameResult credits a finished game. boosted applies the golden paw
// coin bonus.
func ApplyGameResult(d UserData, result GameResult, boosted bool) (UserData, GameReward) {
	coins := rewards.BoostedCoins(result.CoinsEarned, boosted)
	xp := result.XPEarned
	if xp < 0 {
		xp = 0
	}

	out := d.Clone()
	out.Coins += coins
	var levels []int
	out.PlayerStats, levels = rewards.ApplyXP(out.PlayerStats, xp, rewards.DefaultCurve)
	return out, GameReward{Coins: coins, XP: xp, LevelUps: levels}
}
