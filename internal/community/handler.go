package community

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/profile"
)

// Handler exposes community endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a community HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Publish toggles the visibility of one of the caller's phrases.
func (h *Handler) Publish(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	var req PublishInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Publish(c.UserContext(), uid, req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhrase):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, profile.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "profile not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"phraseId": req.Phrase.ID, "isPublic": req.IsPublic})
}

// PublicProfile returns the public view of a user.
func (h *Handler) PublicProfile(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid username")
	}
	pp, err := h.service.PublicProfile(c.UserContext(), username)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "user not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(pp)
}
