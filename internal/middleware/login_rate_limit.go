package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

const (
	loginRateWindow = time.Minute
	loginRatePrefix = "rl:login:"
)

// LoginRateLimit caps login attempts per email, or per client IP when the
// body carries no email, within a fixed one-minute window. Without Redis it
// is a no-op; Redis failures let the request through.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		key := loginRatePrefix + loginSubject(c)

		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()
		count, ttl, err := hit(ctx, cache, key)
		if err != nil {
			return c.Next()
		}
		if count > int64(maxPerMin) {
			if ttl <= 0 {
				ttl = loginRateWindow
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int((ttl+time.Second-1)/time.Second)))
			return apperr.ErrRateLimited
		}
		return c.Next()
	}
}

func loginSubject(c *fiber.Ctx) string {
	var req struct {
		Email string `json:"email"`
	}
	_ = c.BodyParser(&req)
	if subject := strings.ToLower(strings.TrimSpace(req.Email)); subject != "" {
		return subject
	}
	return c.IP()
}

// hit increments the window counter and reads its TTL in one transaction,
// starting the window on the first attempt.
func hit(ctx context.Context, cache *redis.Client, key string) (int64, time.Duration, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining < 0 {
		if err := cache.Expire(ctx, key, loginRateWindow).Err(); err != nil {
			return 0, 0, err
		}
		remaining = loginRateWindow
	}
	return incr.Val(), remaining, nil
}
