package identity

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/notification"
)

// Handler exposes identity endpoints.
type Handler struct {
	service  *Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewHandler constructs an identity HTTP handler. notifier may be nil.
func NewHandler(service *Service, notifier notification.Notifier, logger *slog.Logger) *Handler {
	return &Handler{service: service, notifier: notifier, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// Register handles account creation.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("request body must be a JSON object")
	}
	user, err := h.service.Register(c.UserContext(), RegisterInput{Username: req.Username, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	h.logger.Info("identity.register completed",
		slog.String("user_id", user.ID),
		slog.Int("status", http.StatusCreated),
	)
	if h.notifier != nil {
		msg := notification.Message{Kind: notification.KindAccountRegistered, Destination: user.Email, Body: "welcome " + user.Username}
		if err := h.notifier.Send(c.UserContext(), msg); err != nil {
			h.logger.Warn("identity.register notification failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	return c.Status(http.StatusCreated).JSON(registerResponse{Message: "user registered successfully", UserID: user.ID})
}

// User returns the profile of the user named by the :id path parameter.
func (h *Handler) User(c *fiber.Ctx) error {
	user, err := h.service.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(user.Profile())
}
