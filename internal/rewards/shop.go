package rewards

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownEnvelope is returned for envelope ids missing from the shop.
	ErrUnknownEnvelope = errors.New("unknown envelope")
	// ErrUnknownUpgrade is returned for upgrade ids missing from the shop.
	ErrUnknownUpgrade = errors.New("unknown upgrade")
)

const (
	EnvelopeBronze EnvelopeID = "bronze"
	EnvelopeSilver EnvelopeID = "silver"
	EnvelopeGold   EnvelopeID = "gold"

	// UpgradeGoldenPaw boosts coins earned in mini-games.
	UpgradeGoldenPaw UpgradeID = "goldenPaw"
	// UpgradeBetterBait makes mice in the hunt game linger longer.
	UpgradeBetterBait UpgradeID = "betterBait"
	// UpgradeExtraTime adds seconds to timed games.
	UpgradeExtraTime UpgradeID = "extraTime"

	// GoldenPawBonusPercent is the extra share of game coins granted by
	// UpgradeGoldenPaw, rounded down.
	GoldenPawBonusPercent = 50
)

var envelopes = map[EnvelopeID]Envelope{
	EnvelopeBronze: {ID: EnvelopeBronze, Name: "Sobre de Bronce", BaseCost: 100, CostIncreasePerLevel: 10, ImageCount: 1, XP: 10},
	EnvelopeSilver: {ID: EnvelopeSilver, Name: "Sobre de Plata", BaseCost: 250, CostIncreasePerLevel: 25, ImageCount: 3, XP: 30},
	EnvelopeGold:   {ID: EnvelopeGold, Name: "Sobre de Oro", BaseCost: 500, CostIncreasePerLevel: 50, ImageCount: 5, XP: 60},
}

var upgrades = map[UpgradeID]Upgrade{
	UpgradeGoldenPaw:  {ID: UpgradeGoldenPaw, Name: "Pata Dorada", Cost: 1000, LevelRequired: 3},
	UpgradeBetterBait: {ID: UpgradeBetterBait, Name: "Mejor Cebo", Cost: 750, LevelRequired: 2},
	UpgradeExtraTime:  {ID: UpgradeExtraTime, Name: "Tiempo Extra", Cost: 500, LevelRequired: 1},
}

// LookupEnvelope returns the shop definition of an envelope.
func LookupEnvelope(id EnvelopeID) (Envelope, error) {
	env, ok := envelopes[id]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownEnvelope, id)
	}
	return env, nil
}

// LookupUpgrade returns the shop definition of an upgrade.
func LookupUpgrade(id UpgradeID) (Upgrade, error) {
	up, ok := upgrades[id]
	if !ok {
		return Upgrade{}, fmt.Errorf("%w: %q", ErrUnknownUpgrade, id)
	}
	return up, nil
}

// Envelopes lists the shop envelopes from cheapest to most expensive.
func Envelopes() []Envelope {
	out := make([]Envelope, 0, len(envelopes))
	for _, env := range envelopes {
		out = append(out, env)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BaseCost < out[j].BaseCost })
	return out
}

// Upgrades lists the shop upgrades ordered by level requirement.
func Upgrades() []Upgrade {
	out := make([]Upgrade, 0, len(upgrades))
	for _, up := range upgrades {
		out = append(out, up)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LevelRequired != out[j].LevelRequired {
			return out[i].LevelRequired < out[j].LevelRequired
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BoostedCoins applies the golden paw bonus when boosted is true.
func BoostedCoins(earned int, boosted bool) int {
	if earned < 0 {
		earned = 0
	}
	if !boosted {
		return earned
	}
	return earned + earned*GoldenPawBonusPercent/100
}
