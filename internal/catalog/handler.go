package catalog

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds a catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns every catalog image. No authentication is required.
func (h *Handler) List(c *fiber.Ctx) error {
	images, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(images)
}
