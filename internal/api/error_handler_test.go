package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", domain.NewValidationError("name is required"), http.StatusBadRequest, `{"message":"name is required"}`},
		{"duplicate email", domain.ErrUserExists, http.StatusBadRequest, `{"message":"User already exists"}`},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, `{"message":"Invalid email or password"}`},
		{"bad token", domain.ErrInvalidToken, http.StatusUnauthorized, `{"message":"Not authorized, token failed"}`},
		{"no identity", domain.ErrUnauthorized, http.StatusUnauthorized, `{"message":"Not authorized"}`},
		{"locked", domain.ErrAccountLocked, http.StatusForbidden, `{"message":"Account is locked"}`},
		{"not admin", domain.ErrNotAdmin, http.StatusForbidden, `{"message":"Not authorized as an admin"}`},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, `{"message":"Access forbidden"}`},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrRecipeNotFound), http.StatusNotFound, `{"message":"Recipe not found"}`},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests, `{"message":"Too many attempts, please try again later"}`},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, `{"message":"invalid payload"}`},
		{"unexpected", errors.New("mongo: connection reset by 10.0.0.3"), http.StatusInternalServerError, `{"message":"Something went wrong"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if got := trimNewline(rec.Body.String()); got != tt.body {
				t.Fatalf("expected body %s, got %s", tt.body, got)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		return s[:n-1]
	}
	return s
}
