package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pictocat/pictocat/internal/profile"
	"github.com/pictocat/pictocat/internal/rewards"
	"github.com/pictocat/pictocat/internal/session"
	"github.com/pictocat/pictocat/internal/userdata"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Code, e.Message)
}

// Config points the client at a PictoCat server.
type Config struct {
	BaseURL string
	// Token is the bearer token of the logged-in user.
	Token   string
	Timeout time.Duration
}

// Client talks to the PictoCat HTTP API. It implements session.Gateway.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

var _ session.Gateway = (*Client)(nil)

// New builds a client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: timeout,
	}
}

// FetchCatalog loads the image catalog. No credentials are sent.
func (c *Client) FetchCatalog(ctx context.Context) ([]rewards.Image, error) {
	var images []rewards.Image
	if err := c.do(ctx, fiber.Get(c.baseURL+"/api/v1/catalog"), false, &images); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return images, nil
}

// FetchProfile loads the caller's profile. A 404 maps to
// session.ErrProfileNotFound.
func (c *Client) FetchProfile(ctx context.Context) (profile.Profile, error) {
	var p profile.Profile
	err := c.do(ctx, fiber.Get(c.baseURL+"/api/v1/profile"), true, &p)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return profile.Profile{}, session.ErrProfileNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return p, nil
}

// SaveUserData overwrites the stored document with a versioned snapshot.
func (c *Client) SaveUserData(ctx context.Context, data userdata.UserData, version int64) (profile.SaveResult, error) {
	agent := fiber.Post(c.baseURL + "/api/v1/profile/data").
		JSON(fiber.Map{"data": data, "version": version})
	var res profile.SaveResult
	if err := c.do(ctx, agent, true, &res); err != nil {
		return profile.SaveResult{}, fmt.Errorf("save user data: %w", err)
	}
	return res, nil
}

// PublishPhrase shares or withdraws a phrase in the community.
func (c *Client) PublishPhrase(ctx context.Context, phrase userdata.Phrase, image rewards.Image, isPublic bool) error {
	agent := fiber.Post(c.baseURL + "/api/v1/phrases/publish").
		JSON(fiber.Map{"phrase": phrase, "image": image, "isPublic": isPublic})
	if err := c.do(ctx, agent, true, nil); err != nil {
		return fmt.Errorf("publish phrase: %w", err)
	}
	return nil
}

type result struct {
	code int
	body []byte
	errs []error
}

// do sends the request and decodes a JSON response into out. The agent has
// no context support, so cancellation abandons the response rather than the
// request.
func (c *Client) do(ctx context.Context, agent *fiber.Agent, authenticated bool, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if authenticated {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
		agent.Set("Idempotency-Key", uuid.NewString())
	}

	done := make(chan result, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- result{code: code, body: body, errs: errs}
	}()

	var res result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-done:
	}

	if len(res.errs) > 0 {
		return errors.Join(res.errs...)
	}
	if res.code < 200 || res.code >= 300 {
		return &StatusError{Code: res.code, Message: errorMessage(res.body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
