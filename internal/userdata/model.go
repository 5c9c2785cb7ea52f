package userdata

import (
	"slices"
	"sort"

	"github.com/pictocat/pictocat/internal/rewards"
)

// Phrase is a communication tile on the picture board.
type Phrase struct {
	ID              string `json:"id"`
	Text            string `json:"text"`
	SelectedImageID *int   `json:"selectedImageId"`
	IsCustom        bool   `json:"isCustom"`
	IsPublic        bool   `json:"isPublic,omitempty"`
}

// UserData is the single document persisted per user. Every update produces
// a new value; callers never observe a partially applied change.
type UserData struct {
	Coins             int                 `json:"coins"`
	PlayerStats       rewards.Stats       `json:"playerStats"`
	UnlockedImageIDs  []int               `json:"unlockedImageIds"`
	PurchasedUpgrades []rewards.UpgradeID `json:"purchasedUpgrades"`
	Phrases           []Phrase            `json:"phrases"`
}

// Clone returns a deep copy of d.
func (d UserData) Clone() UserData {
	out := d
	out.UnlockedImageIDs = slices.Clone(d.UnlockedImageIDs)
	out.PurchasedUpgrades = slices.Clone(d.PurchasedUpgrades)
	out.Phrases = make([]Phrase, len(d.Phrases))
	for i, p := range d.Phrases {
		out.Phrases[i] = p.clone()
	}
	return out
}

// Equal reports whether two documents hold the same state. Nil and empty
// slices compare equal.
func (d UserData) Equal(o UserData) bool {
	return d.Coins == o.Coins &&
		d.PlayerStats == o.PlayerStats &&
		slices.Equal(d.UnlockedImageIDs, o.UnlockedImageIDs) &&
		slices.Equal(d.PurchasedUpgrades, o.PurchasedUpgrades) &&
		slices.EqualFunc(d.Phrases, o.Phrases, Phrase.equal)
}

func (p Phrase) equal(o Phrase) bool {
	if p.ID != o.ID || p.Text != o.Text || p.IsCustom != o.IsCustom || p.IsPublic != o.IsPublic {
		return false
	}
	if p.SelectedImageID == nil || o.SelectedImageID == nil {
		return p.SelectedImageID == o.SelectedImageID
	}
	return *p.SelectedImageID == *o.SelectedImageID
}

// UnlockedSet returns the unlocked image ids as a set.
func (d UserData) UnlockedSet() map[int]struct{} {
	set := make(map[int]struct{}, len(d.UnlockedImageIDs))
	for _, id := range d.UnlockedImageIDs {
		set[id] = struct{}{}
	}
	return set
}

// HasUpgrade reports whether the upgrade was purchased.
func (d UserData) HasUpgrade(id rewards.UpgradeID) bool {
	for _, up := range d.PurchasedUpgrades {
		if up == id {
			return true
		}
	}
	return false
}

// FindPhrase returns the phrase with the given id.
func (d UserData) FindPhrase(id string) (Phrase, bool) {
	if i := d.phraseIndex(id); i >= 0 {
		return d.Phrases[i].clone(), true
	}
	return Phrase{}, false
}

func (d UserData) phraseIndex(id string) int {
	for i, p := range d.Phrases {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (p Phrase) clone() Phrase {
	if p.SelectedImageID != nil {
		v := *p.SelectedImageID
		p.SelectedImageID = &v
	}
	return p
}

// ImageID is a helper for building optional image references.
func ImageID(id int) *int {
	return &id
}

// unionIDs merges ids into base without duplicates and returns a sorted copy.
func unionIDs(base []int, ids ...int) []int {
	set := make(map[int]struct{}, len(base)+len(ids))
	for _, id := range base {
		set[id] = struct{}{}
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func unionUpgrades(base []rewards.UpgradeID, ids ...rewards.UpgradeID) []rewards.UpgradeID {
	set := make(map[rewards.UpgradeID]struct{}, len(base)+len(ids))
	for _, id := range base {
		set[id] = struct{}{}
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]rewards.UpgradeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
