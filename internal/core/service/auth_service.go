package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// AuthOptions tunes login policy.
type AuthOptions struct {
	// RejectLockedLogin refuses to issue a token to a locked account. When
	// false, login succeeds and reports IsLocked; the access gate still
	// rejects every authenticated request made by that account.
	RejectLockedLogin bool
}

// AuthService implements signup and login.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	audit    ports.AuditSink
	validate *validator.Validate
	opts     AuthOptions
	log      zerolog.Logger

	// dummyHash is compared against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	audit ports.AuditSink,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = discardSink{}
	}
	dummy, err := hasher.Hash("mystere-meal-dummy-password")
	if err != nil {
		log.Warn().Err(err).Msg("could not precompute dummy password hash")
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		validate:  validator.New(),
		opts:      opts,
		log:       log,
		dummyHash: dummy,
	}
}

func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if err := s.validateSignup(name, email, in.Password); err != nil {
		return nil, err
	}

	// Fast path only; the unique index on email is what makes concurrent
	// signups safe.
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: create user: %w", err)
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, fmt.Errorf("signup: issue token: %w", err)
	}

	s.audit.Enqueue(domain.AuthEvent{
		UserID:   created.ID,
		Email:    created.Email,
		Kind:     domain.EventSignup,
		RemoteIP: in.RemoteIP,
		At:       now,
	})
	s.log.Info().Str("user_id", created.ID).Msg("user signed up")

	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login checks credentials and mints a token. Unknown email and wrong
// password are reported identically as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: lookup email: %w", err)
		}
		s.hasher.Verify(in.Password, s.dummyHash)
		s.loginFailed(email, in.RemoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.loginFailed(email, in.RemoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	if user.IsLocked && s.opts.RejectLockedLogin {
		s.log.Info().Str("user_id", user.ID).Msg("login refused for locked account")
		return nil, domain.ErrAccountLocked
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.audit.Enqueue(domain.AuthEvent{
		UserID:   user.ID,
		Email:    user.Email,
		Kind:     domain.EventLogin,
		RemoteIP: in.RemoteIP,
		At:       time.Now().UTC(),
	})

	return &ports.AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) validateSignup(name, email, password string) error {
	if name == "" {
		return domain.NewValidationError("name is required")
	}
	if email == "" {
		return domain.NewValidationError("email is required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return domain.NewValidationError("email must be a valid email")
	}
	if password == "" {
		return domain.NewValidationError("password is required")
	}
	return nil
}

func (s *AuthService) loginFailed(email, ip string) {
	s.audit.Enqueue(domain.AuthEvent{
		Email:    email,
		Kind:     domain.EventLoginFailed,
		RemoteIP: ip,
		At:       time.Now().UTC(),
	})
}

type discardSink struct{}

func (discardSink) Enqueue(domain.AuthEvent) {}
