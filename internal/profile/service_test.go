package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/pictocat/pictocat/internal/logging"
	"github.com/pictocat/pictocat/internal/notification"
	"github.com/pictocat/pictocat/internal/userdata"
)

func signup(id, email string) SignupEvent {
	var ev SignupEvent
	ev.Event = eventSignup
	ev.User.ID = id
	ev.User.Email = email
	return ev
}

func newTestService(repo Repository) (*Service, *notification.Recorder) {
	rec := notification.NewRecorder(8)
	starter := func(context.Context) ([]int, error) { return []int{1, 2, 3}, nil }
	return NewService(repo, starter, rec, logging.Discard()), rec
}

func TestProvisionCreatesProfileOnce(t *testing.T) {
	svc, rec := newTestService(NewMemoryRepository())
	ctx := context.Background()

	p, created, err := svc.Provision(ctx, signup("u1", "luna.gata@example.com"))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if !created || p.Username != "@lunagata" || !p.IsVerified || p.Role != RoleUser {
		t.Fatalf("unexpected profile %+v created=%v", p, created)
	}
	if p.Data.Coins != userdata.StartingCoins || len(p.Data.UnlockedImageIDs) != 3 {
		t.Fatalf("unexpected initial data %+v", p.Data)
	}
	if msgs := rec.Drain(); len(msgs) != 1 || msgs[0].Kind != notification.KindProfileProvisioned {
		t.Fatalf("expected provisioning notification, got %+v", msgs)
	}

	again, created, err := svc.Provision(ctx, signup("u1", "luna.gata@example.com"))
	if err != nil {
		t.Fatalf("second provision: %v", err)
	}
	if created || again.ID != "u1" {
		t.Fatalf("expected existing profile, got %+v created=%v", again, created)
	}
}

func TestProvisionDerivesUniqueUsername(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepository())
	svc.suffix = func() int { return 4242 }
	ctx := context.Background()

	if _, _, err := svc.Provision(ctx, signup("u1", "michi@example.com")); err != nil {
		t.Fatalf("provision u1: %v", err)
	}
	p, _, err := svc.Provision(ctx, signup("u2", "michi@other.org"))
	if err != nil {
		t.Fatalf("provision u2: %v", err)
	}
	if p.Username != "@michi4242" {
		t.Fatalf("expected suffixed username, got %s", p.Username)
	}
}

func TestProvisionIgnoresOtherEventsAndValidates(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepository())
	ctx := context.Background()

	ev := signup("u1", "a@b.c")
	ev.Event = "login"
	p, created, err := svc.Provision(ctx, ev)
	if err != nil || created || p.ID != "" {
		t.Fatalf("expected ignored event, got %+v %v %v", p, created, err)
	}

	if _, _, err := svc.Provision(ctx, signup("", "a@b.c")); !errors.Is(err, ErrInvalidSignup) {
		t.Fatalf("expected invalid signup, got %v", err)
	}
}

func TestCreateValidatesUsername(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "michi"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected invalid username, got %v", err)
	}
	if _, err := svc.Create(ctx, "u1", "@michi"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", "@other"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected exists, got %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "@michi"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
}

func TestSaveDataIgnoresStaleVersions(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepository())
	ctx := context.Background()
	p, _, err := svc.Provision(ctx, signup("u1", "kid@example.com"))
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	newer := p.Data
	newer.Coins = 900
	res, err := svc.SaveData(ctx, "u1", newer, 2)
	if err != nil || !res.Applied {
		t.Fatalf("expected applied save, got %+v %v", res, err)
	}

	older := p.Data
	older.Coins = 10
	res, err = svc.SaveData(ctx, "u1", older, 1)
	if err != nil || res.Applied {
		t.Fatalf("expected stale save ignored, got %+v %v", res, err)
	}

	got, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data.Coins != 900 || got.Version != 2 {
		t.Fatalf("expected newest document, got coins=%d version=%d", got.Data.Coins, got.Version)
	}

	if _, err := svc.SaveData(ctx, "missing", newer, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(NewMemoryRepository())
	ctx := context.Background()
	for i, email := range []string{"gatito@x.com", "gatote@x.com", "perro@x.com"} {
		if _, _, err := svc.Provision(ctx, signup(string(rune('a'+i)), email)); err != nil {
			t.Fatalf("provision: %v", err)
		}
	}

	users, err := svc.Search(ctx, "GAT")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 2 || users[0].Username != "@gatito" {
		t.Fatalf("unexpected results %+v", users)
	}
	if short, _ := svc.Search(ctx, "g"); len(short) != 0 {
		t.Fatalf("expected empty result for short query")
	}
}

func TestUsernameBase(t *testing.T) {
	cases := map[string]string{
		"luna.gata@example.com":                "@lunagata",
		"averyveryverylongemailname123@ex.com": "@averyveryverylongema",
		"!!!@example.com":                      "@gato",
		"josé.núñez@example.com":               "@josenunez",
	}
	for email, want := range cases {
		if got := usernameBase(email); got != want {
			t.Fatalf("%s: expected %s, got %s", email, want, got)
		}
	}
}
