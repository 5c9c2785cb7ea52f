package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pictocat/pictocat/internal/auth"
	"github.com/pictocat/pictocat/internal/config"
	"github.com/pictocat/pictocat/internal/logging"
	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/rewards"
)

const (
	testJWTSecret     = "jwt-secret"
	testWebhookSecret = "webhook-secret"
)

type testEnv struct {
	app    *fiber.App
	tokens *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	seed := true
	cfg := config.Config{
		AppName:             "PictoCat",
		AppEnv:              "development",
		IdempotencyTTL:      time.Minute,
		JWTSecret:           testJWTSecret,
		WebhookSecret:       testWebhookSecret,
		CatalogCacheTTL:     time.Minute,
		StarterImageCount:   3,
		SaveRateLimitPerMin: 100,
		SeedCatalog:         &seed,
	}
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return &testEnv{app: app, tokens: auth.NewService(testJWTSecret, testWebhookSecret)}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if userID != "" {
		token, err := e.tokens.Sign(userID, userID+"@example.com", time.Hour)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, out
}

func (e *testEnv) signup(t *testing.T, id, email string) {
	t.Helper()
	var ev profile.SignupEvent
	ev.Event = "signup"
	ev.User.ID = id
	ev.User.Email = email
	body, _ := json.Marshal(ev)
	sig, err := e.tokens.SignWebhook(body)
	if err != nil {
		t.Fatalf("sign webhook: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/webhook", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Webhook-Signature", sig)
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("webhook status %d", resp.StatusCode)
	}
}

func TestCatalogIsPublicAndSeeded(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/api/v1/catalog", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var images []rewards.Image
	if err := json.Unmarshal(body, &images); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(images) == 0 || images[0].ID != 1 || images[0].URL == "" {
		t.Fatalf("unexpected catalog %+v", images)
	}
}

func TestProfileNotFoundUntilProvisioned(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := env.do(t, http.MethodGet, "/api/v1/profile", "u1", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 before signup, got %d", status)
	}

	env.signup(t, "u1", "luna@example.com")
	status, body := env.do(t, http.MethodGet, "/api/v1/profile", "u1", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	var p profile.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Username != "@luna" || len(p.Data.UnlockedImageIDs) != 3 || p.Version != 0 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/webhook",
		bytes.NewReader([]byte(`{"event":"signup","user":{"id":"u1","email":"a@b.c"}}`)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Webhook-Signature", "forged")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	if status, _ := env.do(t, http.MethodGet, "/api/v1/profile", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestSaveDataIgnoresStaleVersions(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "u1", "luna@example.com")

	_, body := env.do(t, http.MethodGet, "/api/v1/profile", "u1", nil)
	var p profile.Profile
	_ = json.Unmarshal(body, &p)

	newer := p.Data
	newer.Coins = 900
	status, body := env.do(t, http.MethodPost, "/api/v1/profile/data", "u1", fiber.Map{"data": newer, "version": 2})
	if status != http.StatusOK {
		t.Fatalf("save: %d %s", status, body)
	}
	var res profile.SaveResult
	_ = json.Unmarshal(body, &res)
	if !res.Applied || res.Version != 2 {
		t.Fatalf("unexpected result %+v", res)
	}

	older := p.Data
	older.Coins = 100
	_, body = env.do(t, http.MethodPost, "/api/v1/profile/data", "u1", fiber.Map{"data": older, "version": 1})
	_ = json.Unmarshal(body, &res)
	if res.Applied {
		t.Fatalf("stale write must not apply")
	}

	_, body = env.do(t, http.MethodGet, "/api/v1/profile", "u1", nil)
	_ = json.Unmarshal(body, &p)
	if p.Data.Coins != 900 || p.Version != 2 {
		t.Fatalf("expected newest document to win, got coins=%d version=%d", p.Data.Coins, p.Version)
	}

	if status, _ := env.do(t, http.MethodPost, "/api/v1/profile/data", "u1", fiber.Map{"version": 3}); status != http.StatusBadRequest {
		t.Fatalf("expected 400 without data, got %d", status)
	}
}

func TestPublishAndDiscover(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "u1", "michi@example.com")

	status, body := env.do(t, http.MethodPost, "/api/v1/phrases/publish", "u1", fiber.Map{
		"phrase":   fiber.Map{"id": "default_play", "text": "Quiero jugar", "selectedImageId": 1},
		"image":    fiber.Map{"id": 1, "url": "https://cdn.test/1.jpg", "theme": "classic"},
		"isPublic": true,
	})
	if status != http.StatusOK {
		t.Fatalf("publish: %d %s", status, body)
	}

	status, body = env.do(t, http.MethodGet, "/api/v1/users/%40michi/public", "u1", nil)
	if status != http.StatusOK {
		t.Fatalf("public profile: %d %s", status, body)
	}
	var pp struct {
		Username string `json:"username"`
		Phrases  []struct {
			PhraseID string `json:"phraseId"`
		} `json:"phrases"`
	}
	_ = json.Unmarshal(body, &pp)
	if pp.Username != "@michi" || len(pp.Phrases) != 1 || pp.Phrases[0].PhraseID != "default_play" {
		t.Fatalf("unexpected public profile %s", body)
	}

	status, body = env.do(t, http.MethodGet, "/api/v1/users/search?q=mic", "u1", nil)
	var users []profile.PublicUser
	_ = json.Unmarshal(body, &users)
	if status != http.StatusOK || len(users) != 1 || !users[0].IsVerified {
		t.Fatalf("unexpected search %d %s", status, body)
	}

	if status, _ := env.do(t, http.MethodGet, "/api/v1/users/%40nadie/public", "u1", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", status)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	if status, body := env.do(t, http.MethodGet, "/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("health: %d %s", status, body)
	}
	if status, _ := env.do(t, http.MethodGet, "/metrics", "", nil); status != http.StatusOK {
		t.Fatalf("metrics: %d", status)
	}
}
