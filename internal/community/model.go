package community

import (
	"time"

	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/userdata"
)

// PublicPhrase is a phrase a user chose to share with the community.
type PublicPhrase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	PhraseID    string    `json:"phraseId"`
	Text        string    `json:"text"`
	ImageURL    string    `json:"imageUrl"`
	ImageTheme  string    `json:"imageTheme"`
	PublishedAt time.Time `json:"publishedAt"`
}

// PublicProfile is the community view of a user.
type PublicProfile struct {
	Username   string         `json:"username"`
	IsVerified bool           `json:"isVerified"`
	Phrases    []PublicPhrase `json:"phrases"`
}

// PublishInput toggles the visibility of one phrase.
type PublishInput struct {
	Phrase   userdata.Phrase `json:"phrase"`
	Image    rewards.Image   `json:"image"`
	IsPublic bool            `json:"isPublic"`
}
