package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// AuditRepository persists the authentication audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
	// ListByUser returns the newest events first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.AuthEvent, error)
}
