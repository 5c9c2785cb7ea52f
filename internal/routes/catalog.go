package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/catalog"
)

// RegisterCatalogRoutes exposes the public image catalog.
func RegisterCatalogRoutes(r fiber.Router, h *catalog.Handler) {
	r.Get("/catalog", h.List)
}
