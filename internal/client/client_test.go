package client

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/auth"
	"github.com/pictocat/pictocat/internal/config"
	"github.com/pictocat/pictocat/internal/logging"
	"github.com/pictocat/pictocat/internal/notification"
	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/server"
	"github.com/pictocat/pictocat/internal/session"
	"github.com/pictocat/pictocat/internal/userdata"
)

const testSecret = "client-test-secret"

// startServer runs the API with in-memory storage on a loopback listener.
func startServer(t *testing.T) string {
	t.Helper()
	seed := true
	cfg := config.Config{
		AppName:             "PictoCat",
		AppEnv:              "local",
		IdempotencyTTL:      time.Minute,
		JWTSecret:           testSecret,
		CatalogCacheTTL:     time.Minute,
		StarterImageCount:   2,
		SaveRateLimitPerMin: 100,
		SeedCatalog:         &seed,
	}
	srv, err := server.New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("server: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return "http://" + ln.Addr().String()
}

func newClient(t *testing.T, baseURL, userID string) *Client {
	t.Helper()
	token, err := auth.NewService(testSecret, "").Sign(userID, userID+"@example.com", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return New(Config{BaseURL: baseURL, Token: token, Timeout: 5 * time.Second})
}

func provision(t *testing.T, baseURL, userID string) {
	t.Helper()
	code, body, errs := fiber.Post(baseURL + "/api/v1/identity/webhook").
		JSON(fiber.Map{"event": "signup", "user": fiber.Map{"id": userID, "email": "gato.feliz@example.com"}}).
		Bytes()
	if len(errs) > 0 || code != fiber.StatusOK {
		t.Errorf("provision: %d %s %v", code, body, errs)
	}
}

func TestFetchProfileMapsNotFound(t *testing.T) {
	base := startServer(t)
	c := newClient(t, base, "u1")

	if _, err := c.FetchProfile(context.Background()); !errors.Is(err, session.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}

	provision(t, base, "u1")
	p, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.ID != "u1" || p.Username != "@gatofeliz" || len(p.Data.UnlockedImageIDs) != 2 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUnauthorizedIsStatusError(t *testing.T) {
	base := startServer(t)
	c := New(Config{BaseURL: base, Token: "garbage"})

	_, err := c.FetchProfile(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Code != fiber.StatusUnauthorized || se.Message != "invalid token" {
		t.Fatalf("expected 401 status error, got %v", err)
	}
}

func TestSaveUserDataVersioning(t *testing.T) {
	base := startServer(t)
	c := newClient(t, base, "u1")
	provision(t, base, "u1")
	ctx := context.Background()

	d := userdata.Initial([]int{1})
	d.Coins = 42
	res, err := c.SaveUserData(ctx, d, 5)
	if err != nil || !res.Applied {
		t.Fatalf("save: %+v %v", res, err)
	}
	d.Coins = 1
	res, err = c.SaveUserData(ctx, d, 4)
	if err != nil || res.Applied {
		t.Fatalf("stale save should be acknowledged but not applied: %+v %v", res, err)
	}

	p, err := c.FetchProfile(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Data.Coins != 42 || p.Version != 5 {
		t.Fatalf("unexpected stored document coins=%d version=%d", p.Data.Coins, p.Version)
	}
}

func TestCancelledContext(t *testing.T) {
	c := New(Config{BaseURL: "http://127.0.0.1:1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchCatalog(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	base := startServer(t)
	c := newClient(t, base, "u1")

	// provisioning lands while the session is already polling
	go func() {
		time.Sleep(50 * time.Millisecond)
		provision(t, base, "u1")
	}()

	cfg := session.DefaultConfig()
	cfg.DebounceWindow = time.Hour
	cfg.PollInitialInterval = 20 * time.Millisecond
	cfg.PollMaxInterval = 50 * time.Millisecond
	rec := notification.NewRecorder(16)
	s, err := session.Open(context.Background(), c, session.Options{
		Config:   cfg,
		Notifier: rec,
		Logger:   logging.Discard(),
		Rand:     rand.New(rand.NewSource(3)),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	res, err := s.PurchaseEnvelope(context.Background(), rewards.EnvelopeBronze)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	phrase, err := s.AddPhrase(context.Background(), "Tengo frío", userdata.ImageID(res.NewImages[0].ID))
	if err != nil {
		t.Fatalf("add phrase: %v", err)
	}
	if _, err := s.PublishPhrase(context.Background(), phrase.ID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	s.Close()

	p, err := c.FetchProfile(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("expected a single debounced write, got version %d", p.Version)
	}
	if p.Data.Coins != userdata.StartingCoins-100 || len(p.Data.UnlockedImageIDs) != 3 {
		t.Fatalf("unexpected stored data %+v", p.Data)
	}
	stored, ok := p.Data.FindPhrase(phrase.ID)
	if !ok || !stored.IsPublic {
		t.Fatalf("expected published custom phrase in stored data, got %+v", stored)
	}
}
