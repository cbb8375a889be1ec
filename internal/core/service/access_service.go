package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// AccessService is the per-request authorization gate. It reloads the user
// on every call so that locks and role changes apply to tokens issued
// before them.
type AccessService struct {
	users ports.UserRepository
}

func NewAccessService(users ports.UserRepository) *AccessService {
	return &AccessService{users: users}
}

// Authorize resolves userID and checks it against level.
func (s *AccessService) Authorize(ctx context.Context, userID string, level domain.AccessLevel) (*domain.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}

	id := domain.IdentityOf(user)
	if err := s.Permit(id, level); err != nil {
		return nil, err
	}
	return id, nil
}

// Permit evaluates an already resolved identity. Lock state always wins
// over role.
func (s *AccessService) Permit(id *domain.Identity, level domain.AccessLevel) error {
	switch {
	case id == nil:
		return domain.ErrUnauthorized
	case id.IsLocked:
		return domain.ErrAccountLocked
	case level == domain.AccessAdmin && !id.IsAdmin:
		return domain.ErrNotAdmin
	}
	return nil
}
