package profile

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/userdata"
)

// WebhookVerifier checks identity provider webhook signatures.
type WebhookVerifier interface {
	VerifyWebhook(signature string, body []byte) error
}

const webhookSignatureHeader = "X-Webhook-Signature"

// Handler exposes profile endpoints.
type Handler struct {
	service  *Service
	verifier WebhookVerifier
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(service *Service, verifier WebhookVerifier) *Handler {
	return &Handler{service: service, verifier: verifier}
}

type createRequest struct {
	Username string `json:"username"`
}

type saveRequest struct {
	Data    *userdata.UserData `json:"data"`
	Version int64              `json:"version"`
}

// Get returns the caller's profile. 404 means it is not provisioned yet.
func (h *Handler) Get(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	p, err := h.service.Get(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(p)
}

// Create registers a profile with an explicit username.
func (h *Handler) Create(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, err := h.service.Create(c.UserContext(), uid, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrExists), errors.Is(err, ErrUsernameTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(p)
}

// SaveData overwrites the caller's document.
func (h *Handler) SaveData(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Data == nil {
		return fiber.NewError(http.StatusBadRequest, "data is required")
	}
	if req.Version <= 0 {
		return fiber.NewError(http.StatusBadRequest, "version must be positive")
	}
	res, err := h.service.SaveData(c.UserContext(), uid, *req.Data, req.Version)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "profile not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(res)
}

// Search looks users up by partial username.
func (h *Handler) Search(c *fiber.Ctx) error {
	users, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(users)
}

// Webhook provisions a profile when the identity provider confirms a signup.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	if h.verifier != nil {
		if err := h.verifier.VerifyWebhook(c.Get(webhookSignatureHeader), body); err != nil {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}
	}
	var event SignupEvent
	if err := c.BodyParser(&event); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p, created, err := h.service.Provision(c.UserContext(), event)
	if err != nil {
		if errors.Is(err, ErrInvalidSignup) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if p.ID == "" {
		return c.Status(http.StatusOK).JSON(fiber.Map{"status": "ignored", "event": event.Event})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":   "ok",
		"user_id":  p.ID,
		"username": p.Username,
		"created":  created,
	})
}
