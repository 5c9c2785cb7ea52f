package catalog

import (
	"context"
	"sync"

	"github.com/pictocat/pictocat/internal/rewards"
)

type memoryRepository struct {
	mu     sync.RWMutex
	images []rewards.Image
	origin map[string]struct{}
}

// NewMemoryRepository constructs an in-memory catalog for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{origin: make(map[string]struct{})}
}

func (r *memoryRepository) List(_ context.Context) ([]rewards.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]rewards.Image, len(r.images))
	copy(out, r.images)
	return out, nil
}

func (r *memoryRepository) OriginalIDs(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.origin))
	for id := range r.origin {
		out[id] = struct{}{}
	}
	return out, nil
}

func (r *memoryRepository) Insert(_ context.Context, img SeedImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.origin[img.OriginalID]; exists {
		return nil
	}
	r.origin[img.OriginalID] = struct{}{}
	r.images = append(r.images, rewards.Image{ID: len(r.images) + 1, URL: img.URL, Theme: img.Theme})
	return nil
}

func (r *memoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images), nil
}
