package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/community"
	"github.com/pictocat/pictocat/internal/profile"
)

// RegisterCommunityRoutes wires phrase publishing and user discovery.
func RegisterCommunityRoutes(r fiber.Router, h *community.Handler, profiles *profile.Handler) {
	r.Post("/phrases/publish", h.Publish)
	r.Get("/users/search", profiles.Search)
	r.Get("/users/:username/public", h.PublicProfile)
}
