package profile

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pictocat/pictocat/internal/userdata"
)

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewMemoryRepository builds an in-memory profile store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]Profile)}
}

func (r *memoryRepository) Create(_ context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; exists {
		return ErrExists
	}
	for _, existing := range r.profiles {
		if existing.Username == p.Username {
			return ErrUsernameTaken
		}
	}
	p.Data = p.Data.Clone()
	r.profiles[p.ID] = p
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.Data = p.Data.Clone()
	return p, nil
}

func (r *memoryRepository) FindByUsername(_ context.Context, username string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.Username == username {
			p.Data = p.Data.Clone()
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (r *memoryRepository) UsernameTaken(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) SaveData(_ context.Context, id string, data userdata.UserData, version int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return false, ErrNotFound
	}
	if version <= p.Version {
		return false, nil
	}
	p.Data = data.Clone()
	p.Version = version
	r.profiles[id] = p
	return true, nil
}

func (r *memoryRepository) MutateData(_ context.Context, id string, fn DataMutator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil
	}
	next, changed := fn(p.Data.Clone())
	if changed {
		p.Data = next
		r.profiles[id] = p
	}
	return nil
}

func (r *memoryRepository) Search(_ context.Context, query string, limit int) ([]PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(query)
	users := []PublicUser{}
	for _, p := range r.profiles {
		if strings.Contains(strings.ToLower(p.Username), needle) {
			users = append(users, PublicUser{Username: p.Username, IsVerified: p.IsVerified})
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}
