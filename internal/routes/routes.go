package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/photo-portfolio/photo_portfolio/internal/auth"
	"github.com/photo-portfolio/photo_portfolio/internal/config"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
	"github.com/photo-portfolio/photo_portfolio/internal/middleware"
	"github.com/photo-portfolio/photo_portfolio/internal/notification"
	"github.com/photo-portfolio/photo_portfolio/internal/password"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Users  identity.Repository
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Users == nil {
		return fmt.Errorf("credential store is required")
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var denylist auth.Denylist
	if d.Cache != nil {
		denylist = auth.NewRedisDenylist(d.Cache)
	} else {
		denylist = auth.NewMemoryDenylist()
	}
	identitySvc := identity.NewService(d.Users, password.NewBcryptHasher(d.Cfg.BcryptCost), d.Logger)
	authSvc := auth.NewService(d.Cfg, denylist)
	identityHandler := identity.NewHandler(identitySvc, notification.NewLoggerNotifier(d.Logger), d.Logger)
	authHandler := auth.NewHandler(identitySvc, authSvc, d.Logger)

	// API routes
	api := app.Group("/api")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var idempotency fiber.Handler
	if d.Cache != nil {
		idempotency = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	authn := middleware.Authenticate(authSvc)

	RegisterAuthRoutes(api, authRoutes{
		register:    identityHandler.Register,
		idempotency: idempotency,
		handler:     authHandler,
		rateLimiter: middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit),
		authn:       authn,
	})
	RegisterIdentityRoutes(api, identityHandler, authn)

	return nil
}
