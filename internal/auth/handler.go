package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
)

// Handler exposes auth endpoints for login, logout and the caller's profile.
type Handler struct {
	ids    *identity.Service
	svc    *Service
	logger *slog.Logger
}

func NewHandler(ids *identity.Service, svc *Service, logger *slog.Logger) *Handler {
	return &Handler{ids: ids, svc: svc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("request body must be a JSON object")
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			h.logger.Info("auth.login rejected", slog.String("ip", c.IP()))
		}
		return err
	}
	session, err := h.svc.Login(user)
	if err != nil {
		return err
	}
	h.logger.Info("auth.login completed", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return c.Status(http.StatusOK).JSON(session)
}

// Logout revokes the token presented with the request.
func (h *Handler) Logout(c *fiber.Ctx) error {
	p, ok := PrincipalFrom(c)
	if !ok {
		return apperr.ErrUnauthenticated
	}
	if err := h.svc.Revoke(c.UserContext(), p); err != nil {
		return err
	}
	h.logger.Info("auth.logout completed", slog.String("user_id", p.SubjectID))
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "logged out"})
}

// Me returns the profile of the authenticated caller.
func (h *Handler) Me(c *fiber.Ctx) error {
	p, ok := PrincipalFrom(c)
	if !ok {
		return apperr.ErrUnauthenticated
	}
	user, err := h.ids.FindByID(c.UserContext(), p.SubjectID)
	if errors.Is(err, identity.ErrUserNotFound) {
		return apperr.ErrUnauthenticated
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}
