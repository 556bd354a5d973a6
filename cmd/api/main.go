package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/photo-portfolio/photo_portfolio/internal/config"
	"github.com/photo-portfolio/photo_portfolio/internal/identity"
	"github.com/photo-portfolio/photo_portfolio/internal/infra"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
	"github.com/photo-portfolio/photo_portfolio/internal/notification"
	"github.com/photo-portfolio/photo_portfolio/internal/password"
	"github.com/photo-portfolio/photo_portfolio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	users, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logging.LogError(logger, "open credential store", err, slog.String("driver", cfg.StoreDriver))
		os.Exit(1)
	}
	defer closeStore()

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set; login rate limiting and idempotent replay disabled, logout revocation kept in memory")
	}

	if cfg.Admin.Enabled() {
		ids := identity.NewService(users, password.NewBcryptHasher(cfg.BcryptCost), logger)
		admin, created, err := ids.EnsureAdmin(ctx, identity.RegisterInput{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			logging.LogError(logger, "bootstrap admin", err)
			os.Exit(1)
		}
		logger.Info("admin account ready", "user_id", admin.ID, "created", created)
		if created {
			_ = notification.NewLoggerNotifier(logger).Send(ctx, notification.Message{
				Kind:        notification.KindAdminProvisioned,
				Destination: admin.Email,
				Body:        "admin account " + admin.Username + " provisioned",
			})
		}
	}

	srv, err := server.New(cfg, users, cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()
	logger.Info("server listening", "addr", cfg.Address(), "store", cfg.StoreDriver)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}

// openStore connects the credential store selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (identity.Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := infra.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				logger.Warn("disconnect mongodb", "error", err)
			}
		}
		repo := identity.NewMongoRepository(client.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return repo, closeFn, nil

	case config.StorePostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := infra.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return identity.NewPostgresRepository(pool), pool.Close, nil

	default:
		logger.Warn("using in-memory credential store; accounts are lost on restart")
		return identity.NewMemoryRepository(), func() {}, nil
	}
}
