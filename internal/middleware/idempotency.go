package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

const (
	idempotencyKeyHeader      = "Idempotency-Key"
	idempotencyReplayedHeader = "Idempotent-Replayed"
	idempotencyPrefix         = "idempotency:v2:"
	maxIdempotencyKeyLen      = 255
	idempotencyStoreTimeout   = 2 * time.Second
)

// idempotencyRecord is kept per key. A record without Done marks a request
// still being handled.
type idempotencyRecord struct {
	Fingerprint string `json:"fingerprint"`
	Done        bool   `json:"done"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency makes an unsafe request retried with the same Idempotency-Key
// header return the first successful response instead of running again.
// The key is bound to the method, path and body of the first request; reusing
// it with a different payload is a validation error. Failed attempts release
// the key. Requests without the header pass through.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := strings.TrimSpace(c.Get(idempotencyKeyHeader))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return apperr.Validation("Idempotency-Key header is too long")
		}

		cacheKey := idempotencyPrefix + c.Path() + ":" + key
		fp := fingerprint(c.Method(), c.Path(), c.Body())

		ctx, cancel := context.WithTimeout(c.UserContext(), idempotencyStoreTimeout)
		defer cancel()

		pending, _ := json.Marshal(idempotencyRecord{Fingerprint: fp})
		reserved, err := cache.SetNX(ctx, cacheKey, pending, ttl).Result()
		if err != nil {
			return idempotencyStoreError("reserve", err)
		}
		if !reserved {
			return replay(ctx, c, cache, cacheKey, fp, logger)
		}

		if err := c.Next(); err != nil {
			release(cache, cacheKey)
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			release(cache, cacheKey)
			return nil
		}

		done, _ := json.Marshal(idempotencyRecord{
			Fingerprint: fp,
			Done:        true,
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        string(c.Response().Body()),
		})
		persistCtx, persistCancel := context.WithTimeout(context.Background(), idempotencyStoreTimeout)
		defer persistCancel()
		if err := cache.Set(persistCtx, cacheKey, done, ttl).Err(); err != nil {
			logger.Warn("idempotency record not saved", slog.String("key", key), slog.Any("error", err))
			release(cache, cacheKey)
		}
		return nil
	}
}

func replay(ctx context.Context, c *fiber.Ctx, cache *redis.Client, cacheKey, fp string, logger *slog.Logger) error {
	raw, err := cache.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return fiber.NewError(fiber.StatusConflict, "request with this Idempotency-Key is being retried, try again")
	}
	if err != nil {
		return idempotencyStoreError("lookup", err)
	}

	var rec idempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		logger.Warn("idempotency record unreadable", slog.String("cache_key", cacheKey), slog.Any("error", err))
		return fiber.NewError(fiber.StatusConflict, "duplicate request")
	}
	if rec.Fingerprint != fp {
		return apperr.Validation("Idempotency-Key reused with a different payload")
	}
	if !rec.Done {
		return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
	}

	if rec.ContentType != "" {
		c.Set(fiber.HeaderContentType, rec.ContentType)
	}
	c.Set(idempotencyReplayedHeader, "true")
	return c.Status(rec.Status).SendString(rec.Body)
}

func release(cache *redis.Client, cacheKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), idempotencyStoreTimeout)
	defer cancel()
	cache.Del(ctx, cacheKey)
}

// fingerprint identifies a request by method, path and body.
func fingerprint(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func idempotencyStoreError(op string, err error) error {
	return fmt.Errorf("idempotency %s: %w", op, errors.Join(apperr.ErrStoreUnavailable, err))
}
