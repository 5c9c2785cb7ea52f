package userdata

import "github.com/pictocat/pictocat/internal/rewards"

// StartingCoins is the balance of a freshly provisioned profile.
const StartingCoins = 500

var defaultPhrases = []Phrase{
	{ID: "default_hungry", Text: "Tengo hambre"},
	{ID: "default_thirsty", Text: "Tengo sed"},
	{ID: "default_bathroom", Text: "Quiero ir al baño"},
	{ID: "default_play", Text: "Quiero jugar"},
	{ID: "default_help", Text: "Necesito ayuda"},
	{ID: "default_hurt", Text: "Me duele"},
	{ID: "default_happy", Text: "Estoy feliz"},
	{ID: "default_sad", Text: "Estoy triste"},
	{ID: "default_tired", Text: "Estoy cansado"},
	{ID: "default_yes", Text: "Sí"},
	{ID: "default_no", Text: "No"},
	{ID: "default_thanks", Text: "Gracias"},
}

// DefaultPhrases returns the seeded, non-custom phrases.
func DefaultPhrases() []Phrase {
	out := make([]Phrase, len(defaultPhrases))
	copy(out, defaultPhrases)
	return out
}

func isDefaultPhraseID(id string) bool {
	for _, p := range defaultPhrases {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Initial builds the document of a newly provisioned user.
func Initial(starterImageIDs []int) UserData {
	return UserData{
		Coins:             StartingCoins,
		PlayerStats:       rewards.InitialStats(rewards.DefaultCurve),
		UnlockedImageIDs:  unionIDs(nil, starterImageIDs...),
		PurchasedUpgrades: []rewards.UpgradeID{},
		Phrases:           DefaultPhrases(),
	}
}

// Normalize repairs a document read from storage: nil collections become
// empty, set fields lose duplicates, balances and stats are clamped back into
// range, and phrases saved before the custom flag existed get it inferred.
func Normalize(d UserData) UserData {
	out := d.Clone()
	if out.Coins < 0 {
		out.Coins = 0
	}
	out.PlayerStats, _ = rewards.ApplyXP(out.PlayerStats, 0, rewards.DefaultCurve)
	out.UnlockedImageIDs = unionIDs(nil, out.UnlockedImageIDs...)
	out.PurchasedUpgrades = unionUpgrades(nil, out.PurchasedUpgrades...)
	if out.Phrases == nil {
		out.Phrases = []Phrase{}
	}

	seen := make(map[string]struct{}, len(out.Phrases))
	phrases := out.Phrases[:0]
	for _, p := range out.Phrases {
		if _, dup := seen[p.ID]; dup || p.ID == "" {
			continue
		}
		seen[p.ID] = struct{}{}
		if !p.IsCustom && !isDefaultPhraseID(p.ID) {
			p.IsCustom = true
		}
		phrases = append(phrases, p)
	}
	out.Phrases = phrases
	return out
}
