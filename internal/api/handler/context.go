package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/mysteremeal/recipe-api/internal/api/middleware"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// currentIdentity returns the caller resolved by the Auth middleware. A nil
// identity means the route was mounted without Auth.
func currentIdentity(c echo.Context) (*domain.Identity, error) {
	id := middleware.Identity(c)
	if id == nil {
		return nil, domain.ErrUnauthorized
	}
	return id, nil
}

// queryError turns an echo query binding failure into a 400.
func queryError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.NewValidationError("invalid value for query parameter %s", be.Field)
	}
	return err
}
