package session

import (
	"context"
	"errors"

	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/userdata"
)

// ErrProfileNotFound means the profile has not been provisioned yet. It is
// not a failure: the session keeps polling until it appears.
var ErrProfileNotFound = errors.New("profile not provisioned yet")

// Saver persists full user data snapshots.
type Saver interface {
	SaveUserData(ctx context.Context, data userdata.UserData, version int64) (profile.SaveResult, error)
}

// ProfileFetcher loads the caller's profile.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (profile.Profile, error)
}

// Gateway is the persistence and catalog backend a session talks to.
type Gateway interface {
	Saver
	ProfileFetcher
	FetchCatalog(ctx context.Context) ([]rewards.Image, error)
	PublishPhrase(ctx context.Context, phrase userdata.Phrase, image rewards.Image, isPublic bool) error
}
