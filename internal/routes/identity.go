package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/identity"
	"github.com/photo-portfolio/photo_portfolio/internal/middleware"
)

// RegisterIdentityRoutes wires the admin-only user lookup.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler, authn fiber.Handler) {
	admin := r.Group("/admin", authn, middleware.RequireRole(identity.RoleAdmin))
	admin.Get("/users/:id", h.User)
}
