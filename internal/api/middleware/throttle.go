package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/api/metrics"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// AttemptLimiter counts attempts per key within a window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// Throttle rejects callers that exceed the limiter's budget with 429. The
// key is the client IP. Limiter failures let the request through.
func Throttle(limiter AttemptLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), ip)
			if err != nil {
				log.Warn().Err(err).Str("ip", ip).Msg("attempt limiter unavailable, allowing request")
				return next(c)
			}
			if !allowed {
				metrics.ThrottledTotal.Inc()
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(secs))
				return domain.ErrTooManyAttempts
			}
			return next(c)
		}
	}
}
