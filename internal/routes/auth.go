package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creditor/creditor_console/internal/auth"
)

// RegisterAuthRoutes wires the sign in, signup and session endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/request-otp", h.RequestOTP)
	group.Post("/verify-otp", h.VerifyOTP)
	group.Post("/create-password", h.CreatePassword)
	group.Post("/logout", h.Logout)
	group.Get("/session", h.Session)
	group.Patch("/identity", h.UpdateIdentity)
}
