package rewards

// Image is a catalog entry that can be unlocked. The catalog owns these
// records; the reward engine only reads them.
type Image struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Theme string `json:"theme"`
}

// Stats tracks player progression.
type Stats struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPToNextLevel int `json:"xpToNextLevel"`
}

// EnvelopeID identifies an envelope tier.
type EnvelopeID string

// Envelope is a purchasable batch of random image unlocks plus XP. Its price
// is derived from the player level, never stored.
type Envelope struct {
	ID                   EnvelopeID
	Name                 string
	BaseCost             int
	CostIncreasePerLevel int
	ImageCount           int
	XP                   int
}

// UpgradeID identifies a permanent upgrade.
type UpgradeID string

// Upgrade is a one-time purchase that modifies mini-game rewards.
type Upgrade struct {
	ID            UpgradeID
	Name          string
	Cost          int
	LevelRequired int
}
