package session

import (
	"errors"
	"testing"

	"github.com/pictocat/pictocat/internal/userdata"
)

func TestStoreRejectsUpdatesBeforeLoad(t *testing.T) {
	s := NewStore()
	_, _, err := s.Update(func(d userdata.UserData) (userdata.UserData, error) { return d, nil })
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if s.Loaded() {
		t.Fatalf("store should not be loaded")
	}
}

func TestStoreUpdateReportsChange(t *testing.T) {
	s := NewStore()
	s.Load(userdata.Initial([]int{1}))

	_, changed, err := s.Update(func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.UnlockImages(d, 1), nil
	})
	if err != nil || changed {
		t.Fatalf("re-unlocking an owned image must not change the snapshot: changed=%v err=%v", changed, err)
	}

	next, changed, err := s.Update(func(d userdata.UserData) (userdata.UserData, error) {
		return userdata.UnlockImages(d, 2), nil
	})
	if err != nil || !changed || len(next.UnlockedImageIDs) != 2 {
		t.Fatalf("expected change, got changed=%v err=%v next=%+v", changed, err, next.UnlockedImageIDs)
	}
}

func TestStoreKeepsSnapshotOnError(t *testing.T) {
	s := NewStore()
	s.Load(userdata.Initial(nil))
	before, _ := s.Snapshot()

	got, _, err := s.Update(func(d userdata.UserData) (userdata.UserData, error) {
		d.Coins = 0
		return userdata.DeletePhrase(d, "missing")
	})
	if !errors.Is(err, userdata.ErrPhraseNotFound) {
		t.Fatalf("expected ErrPhraseNotFound, got %v", err)
	}
	after, _ := s.Snapshot()
	if got.Coins != before.Coins || after.Coins != before.Coins {
		t.Fatalf("snapshot must be unchanged on error")
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Load(userdata.Initial([]int{1}))
	snap, _ := s.Snapshot()
	snap.UnlockedImageIDs[0] = 42
	again, _ := s.Snapshot()
	if again.UnlockedImageIDs[0] != 1 {
		t.Fatalf("caller mutation leaked into the store")
	}
}
