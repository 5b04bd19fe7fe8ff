package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// AccountRateLimit caps writes per account per minute using Redis counters.
// It must be attached to routes that carry the :accountId parameter. Without
// Redis, or with a non-positive limit, it is a no-op.
func AccountRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || maxPerMin <= 0 {
			return c.Next()
		}
		account := strings.TrimSpace(c.Params("accountId"))
		if account == "" {
			account = c.IP()
		}
		key := "ledger:v1:rl:" + account
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests for this account, try again later")
		}
		return c.Next()
	}
}
