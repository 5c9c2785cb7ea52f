package session

import (
	"context"
	"sync"

	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/userdata"
)

type savedWrite struct {
	data    userdata.UserData
	version int64
}

type publishCall struct {
	phrase   userdata.Phrase
	image    rewards.Image
	isPublic bool
}

// fakeGateway serves a profile after notFoundFor misses and records writes.
type fakeGateway struct {
	mu          sync.Mutex
	catalog     []rewards.Image
	catalogErr  error
	profile     profile.Profile
	profileErr  error
	notFoundFor int
	fetches     int
	saves       []savedWrite
	saveErr     error
	block       chan struct{}
	entered     chan struct{}
	publishes   []publishCall
	publishErr  error
	saved       chan savedWrite
}

func newFakeGateway(catalog []rewards.Image, p profile.Profile) *fakeGateway {
	return &fakeGateway{
		catalog: catalog,
		profile: p,
		saved:   make(chan savedWrite, 64),
		entered: make(chan struct{}, 64),
	}
}

func (g *fakeGateway) FetchCatalog(context.Context) ([]rewards.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.catalog, g.catalogErr
}

func (g *fakeGateway) FetchProfile(context.Context) (profile.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetches++
	if g.profileErr != nil {
		return profile.Profile{}, g.profileErr
	}
	if g.fetches <= g.notFoundFor {
		return profile.Profile{}, ErrProfileNotFound
	}
	return g.profile, nil
}

func (g *fakeGateway) SaveUserData(ctx context.Context, data userdata.UserData, version int64) (profile.SaveResult, error) {
	g.mu.Lock()
	block := g.block
	g.mu.Unlock()
	g.entered <- struct{}{}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return profile.SaveResult{}, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.saveErr != nil {
		return profile.SaveResult{}, g.saveErr
	}
	w := savedWrite{data: data.Clone(), version: version}
	g.saves = append(g.saves, w)
	g.saved <- w
	return profile.SaveResult{Applied: true, Version: version}, nil
}

func (g *fakeGateway) PublishPhrase(_ context.Context, phrase userdata.Phrase, image rewards.Image, isPublic bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.publishes = append(g.publishes, publishCall{phrase: phrase, image: image, isPublic: isPublic})
	return g.publishErr
}

func (g *fakeGateway) setBlock(ch chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.block = ch
}

func (g *fakeGateway) writes() []savedWrite {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]savedWrite, len(g.saves))
	copy(out, g.saves)
	return out
}

func (g *fakeGateway) fetchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches
}

func catalogOf(n int) []rewards.Image {
	out := make([]rewards.Image, n)
	for i := range out {
		out[i] = rewards.Image{ID: i + 1, URL: "https://cdn.test/cat.jpg", Theme: "classic"}
	}
	return out
}
