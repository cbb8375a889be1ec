package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// AuditRecorder stores a single audit event. It is called from the dispatcher workers.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuthEvent) error
}

// AuditSink accepts events for asynchronous recording. Enqueue must not block.
type AuditSink interface {
	Enqueue(event domain.AuthEvent)
}
