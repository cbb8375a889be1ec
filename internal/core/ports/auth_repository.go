package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// ListUsersFilter carries pagination and search for the admin user listing.
type ListUsersFilter struct {
	Search string // optional: partial match on name or email
	Locked *bool  // optional: only locked / only unlocked accounts
	Page   int    // 1-based
	Limit  int
}

// UserRepository is the credential store. Emails are looked up in their
// normalised form; uniqueness of email is enforced by the store itself.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists user and returns it with its assigned ID. It returns
	// domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
	SetLocked(ctx context.Context, id string, locked bool) (*domain.User, error)
	SetAdmin(ctx context.Context, id string, admin bool) (*domain.User, error)
}
