package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mysteremeal/recipe-api/internal/api/metrics"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// IdentityKey is the echo context key holding the *domain.Identity of an
// authenticated request.
const IdentityKey = "identity"

// Auth verifies the bearer token, then runs the access gate at user level so
// that locked accounts are refused on every request, not only at login.
func Auth(tokens ports.TokenIssuer, gate ports.AccessGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			userID, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return domain.ErrInvalidToken
			}

			id, err := gate.Authorize(c.Request().Context(), userID, domain.AccessUser)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}

			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// Identity returns the caller resolved by Auth, or nil.
func Identity(c echo.Context) *domain.Identity {
	id, _ := c.Get(IdentityKey).(*domain.Identity)
	return id
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountLocked):
		return "locked"
	case errors.Is(err, domain.ErrNotAdmin):
		return "not_admin"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unknown_user"
	default:
		return "error"
	}
}
