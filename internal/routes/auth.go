package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/auth"
)

type authRoutes struct {
	register    fiber.Handler
	idempotency fiber.Handler
	handler     *auth.Handler
	rateLimiter fiber.Handler
	authn       fiber.Handler
}

// RegisterAuthRoutes wires registration, login and session endpoints.
func RegisterAuthRoutes(r fiber.Router, a authRoutes) {
	group := r.Group("/auth")
	group.Post("/register", withOptional(a.idempotency, a.register)...)
	group.Post("/login", withOptional(a.rateLimiter, a.handler.Login)...)

	group.Get("/me", a.authn, a.handler.Me)
	group.Post("/logout", a.authn, a.handler.Logout)
}

func withOptional(mw fiber.Handler, h fiber.Handler) []fiber.Handler {
	if mw == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{mw, h}
}
