package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/photo-portfolio/photo_portfolio/internal/logging"
)

const (
	checkOK          = "ok"
	checkDisabled    = "disabled"
	checkUnavailable = "unavailable"
)

// RegisterHealthRoutes adds a readiness endpoint covering the credential store and Redis.
// Failure details go to the log; the body only carries a coarse state.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		storeStatus := checkDependency(d.Logger, "store", d.Users.Ping(ctx), slog.String("driver", d.Cfg.StoreDriver))
		redisStatus := checkDisabled
		if d.Cache != nil {
			redisStatus = checkDependency(d.Logger, "redis", d.Cache.Ping(ctx).Err())
		}

		status := http.StatusOK
		if storeStatus != checkOK || redisStatus == checkUnavailable {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{d.Cfg.StoreDriver: storeStatus, "redis": redisStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func checkDependency(logger *slog.Logger, name string, err error, attrs ...any) string {
	if err == nil {
		return checkOK
	}
	logging.LogError(logger, "health check failed", err, append([]any{slog.String("check", name)}, attrs...)...)
	return checkUnavailable
}
