package auth

import "github.com/gofiber/fiber/v2"

const principalKey = "auth.principal"

// SetPrincipal stores p in the request locals.
func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(principalKey, p)
}

// PrincipalFrom returns the principal stored by SetPrincipal.
func PrincipalFrom(c *fiber.Ctx) (Principal, bool) {
	p, ok := c.Locals(principalKey).(Principal)
	return p, ok
}
