package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 200
)

// UserService implements profile lookup and admin account management.
type UserService struct {
	repo   ports.UserRepository
	events ports.AuditRepository
	audit  ports.AuditSink
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, events ports.AuditRepository, audit ports.AuditSink, log zerolog.Logger) *UserService {
	if audit == nil {
		audit = discardSink{}
	}
	return &UserService{repo: repo, events: events, audit: audit, log: log}
}

func (s *UserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *UserService) Lock(ctx context.Context, actor *domain.Identity, id string) (*domain.User, error) {
	if actor != nil && actor.UserID == id {
		return nil, domain.NewValidationError("you cannot lock your own account")
	}
	u, err := s.repo.SetLocked(ctx, id, true)
	if err != nil {
		return nil, err
	}
	s.record(actor, u, domain.EventLocked)
	return u, nil
}

func (s *UserService) Unlock(ctx context.Context, actor *domain.Identity, id string) (*domain.User, error) {
	u, err := s.repo.SetLocked(ctx, id, false)
	if err != nil {
		return nil, err
	}
	s.record(actor, u, domain.EventUnlocked)
	return u, nil
}

func (s *UserService) SetAdmin(ctx context.Context, actor *domain.Identity, id string, admin bool) (*domain.User, error) {
	if !admin && actor != nil && actor.UserID == id {
		return nil, domain.NewValidationError("you cannot revoke your own admin privilege")
	}
	u, err := s.repo.SetAdmin(ctx, id, admin)
	if err != nil {
		return nil, err
	}
	kind := domain.EventAdminRevoked
	if admin {
		kind = domain.EventAdminGranted
	}
	s.record(actor, u, kind)
	return u, nil
}

// Events returns the newest audit entries of a user.
func (s *UserService) Events(ctx context.Context, id string, limit int) ([]domain.AuthEvent, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}
	events, err := s.events.ListByUser(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *UserService) record(actor *domain.Identity, u *domain.User, kind domain.AuthEventKind) {
	ev := domain.AuthEvent{
		UserID: u.ID,
		Email:  u.Email,
		Kind:   kind,
		At:     time.Now().UTC(),
	}
	if actor != nil {
		ev.ActorID = actor.UserID
	}
	s.audit.Enqueue(ev)
	s.log.Info().Str("user_id", u.ID).Str("actor_id", ev.ActorID).Str("kind", string(kind)).Msg("account updated")
}
