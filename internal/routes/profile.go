package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pictocat/pictocat/internal/profile"
)

// RegisterWebhookRoutes wires the identity provider callbacks.
func RegisterWebhookRoutes(r fiber.Router, h *profile.Handler) {
	r.Post("/identity/webhook", h.Webhook)
}

// RegisterProfileRoutes wires the caller's profile endpoints. saveLimit
// guards document saves.
func RegisterProfileRoutes(r fiber.Router, h *profile.Handler, saveLimit fiber.Handler) {
	r.Get("/profile", h.Get)
	r.Post("/profile", h.Create)
	r.Post("/profile/data", saveLimit, h.SaveData)
}
