package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// SignupInput is what a client may supply when creating an account.
// Privilege flags are deliberately absent.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	RemoteIP string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
	RemoteIP string
}

// AuthResult is returned on successful signup or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
}

// AccessGate decides whether a verified user id may proceed.
type AccessGate interface {
	Authorize(ctx context.Context, userID string, level domain.AccessLevel) (*domain.Identity, error)
	Permit(id *domain.Identity, level domain.AccessLevel) error
}
