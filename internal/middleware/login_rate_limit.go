package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/creditor/creditor_console/internal/notification"
)

const loginRatePrefix = "creditor:rl:login:"

// LoginRateLimit limits login attempts per phone number, or per IP when the
// body carries none. Without Redis, or when Redis fails, requests pass.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			CountryCode string `json:"country_code"`
			PhoneNumber string `json:"phone_number"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.CountryCode) + strings.TrimSpace(req.PhoneNumber)
		if subject == "" {
			subject = c.IP()
		}

		key := loginRatePrefix + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			Notify(c, notification.KindError, "Too many login attempts. Please try again in a minute.")
			return fiber.NewError(http.StatusTooManyRequests, "too many login attempts, try again later")
		}
		return c.Next()
	}
}
