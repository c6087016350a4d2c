package ports

import (
	"context"

	"github.com/suivipro/platform/internal/core/domain"
)

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Publish(event domain.AuditEvent)
}
