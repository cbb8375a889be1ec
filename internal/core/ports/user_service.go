package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// ListUsersResult is a page of users.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService covers profile lookup and admin account management.
type UserService interface {
	Profile(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter ListUsersFilter) (*ListUsersResult, error)
	Lock(ctx context.Context, actor *domain.Identity, id string) (*domain.User, error)
	Unlock(ctx context.Context, actor *domain.Identity, id string) (*domain.User, error)
	SetAdmin(ctx context.Context, actor *domain.Identity, id string, admin bool) (*domain.User, error)
	Events(ctx context.Context, id string, limit int) ([]domain.AuthEvent, error)
}
