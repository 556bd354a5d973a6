package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/auth"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Principal, error)
}

// Authenticate returns a middleware that validates bearer session tokens and
// stores the verified principal for downstream handlers.
func Authenticate(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return apperr.ErrUnauthenticated
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		p, err := verifier.Verify(c.UserContext(), tokenStr)
		if err != nil {
			return err
		}
		auth.SetPrincipal(c, p)
		return c.Next()
	}
}

// RequireRole admits only principals holding one of roles. It must run after Authenticate.
func RequireRole(roles ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := auth.PrincipalFrom(c)
		if !ok {
			return apperr.ErrUnauthenticated
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return apperr.ErrForbidden
	}
}
