package session

import (
	"errors"
	"sync"

	"github.com/pictocat/pictocat/internal/userdata"
)

// ErrNotLoaded is returned by updates attempted before the first load.
var ErrNotLoaded = errors.New("user data not loaded")

// Transform is a pure edit of a snapshot.
type Transform func(userdata.UserData) (userdata.UserData, error)

// Store holds the authoritative snapshot of a session. Callers only ever see
// complete snapshots.
type Store struct {
	mu     sync.RWMutex
	data   userdata.UserData
	loaded bool
}

// NewStore returns an empty, unloaded store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the snapshot with data fetched from the gateway.
func (s *Store) Load(data userdata.UserData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.Clone()
	s.loaded = true
}

// Loaded reports whether Load has been called.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Snapshot returns a copy of the current document.
func (s *Store) Snapshot() (userdata.UserData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), s.loaded
}

// Update applies fn atomically. On error the snapshot is left untouched and
// returned as is. changed reports whether the new snapshot differs.
func (s *Store) Update(fn Transform) (next userdata.UserData, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return userdata.UserData{}, false, ErrNotLoaded
	}
	out, err := fn(s.data.Clone())
	if err != nil {
		return s.data.Clone(), false, err
	}
	changed = !out.Equal(s.data)
	s.data = out
	return out.Clone(), changed, nil
}
