package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// resolve maps err onto the response the client sees.
func resolve(err error) (int, errorResponse) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToLower(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		if code == "" {
			code = "error"
		}
		return fe.Code, errorResponse{Error: code, Message: fe.Message}
	}
	code, status, msg := apperr.Classify(err)
	return status, errorResponse{Error: code, Message: msg}
}

// ErrorHandler converts every handler error into a JSON body with a stable
// kind and a human-readable message. Internal details are logged, never sent.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := resolve(err)
		if status >= http.StatusInternalServerError {
			requestID, _ := c.Locals(requestIDHeader).(string)
			logging.LogError(logger, "request failed", err,
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("request_id", requestID),
			)
		}
		return c.Status(status).JSON(body)
	}
}
