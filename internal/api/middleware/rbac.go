package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/mysteremeal/recipe-api/internal/api/metrics"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// RequireAdmin must run after Auth. It re-applies the gate at admin level to
// the identity Auth resolved.
func RequireAdmin(gate ports.AccessGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := gate.Permit(Identity(c), domain.AccessAdmin); err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return err
			}
			return next(c)
		}
	}
}
