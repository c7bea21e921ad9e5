package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"palmsgig.com/palmsgig/internal/cache"
)

// RateLimiter rejects clients that exceed limit requests per window. Counters
// live in the cache store keyed by client IP, so limits hold across replicas.
func RateLimiter(store cache.Store, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := fmt.Sprintf("ratelimit:%s", c.RealIP())

			count, err := store.Incr(ctx, key)
			if err != nil {
				// fail open
				return next(c)
			}

			if count == 1 {
				if err := store.Expire(ctx, key, window); err != nil {
					// drop the counter so it cannot linger without a TTL
					_ = store.Del(ctx, key)
					return next(c)
				}
			}

			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}

			return next(c)
		}
	}
}
