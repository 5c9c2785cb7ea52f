package community

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pictocat/pictocat/internal/profile"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles profile.Repository
	phrases  map[string]map[string]PublicPhrase
}

// NewMemoryRepository constructs an in-memory community store. The isPublic
// flag is mirrored into profiles.
func NewMemoryRepository(profiles profile.Repository) Repository {
	return &memoryRepository{profiles: profiles, phrases: make(map[string]map[string]PublicPhrase)}
}

func (r *memoryRepository) Publish(ctx context.Context, phrase PublicPhrase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.phrases[phrase.UserID]
	if !ok {
		byUser = make(map[string]PublicPhrase)
		r.phrases[phrase.UserID] = byUser
	}
	if existing, ok := byUser[phrase.PhraseID]; ok {
		phrase.ID = existing.ID
		phrase.PublishedAt = existing.PublishedAt
	} else if phrase.ID == "" {
		phrase.ID = uuid.NewString()
	}
	byUser[phrase.PhraseID] = phrase
	return r.profiles.MutateData(ctx, phrase.UserID, markPublic(phrase.PhraseID, true))
}

func (r *memoryRepository) Unpublish(ctx context.Context, userID, phraseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.phrases[userID], phraseID)
	return r.profiles.MutateData(ctx, userID, markPublic(phraseID, false))
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]PublicPhrase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PublicPhrase, 0, len(r.phrases[userID]))
	for _, p := range r.phrases[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
