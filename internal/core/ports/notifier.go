package ports

import (
	"context"

	"github.com/suivipro/platform/internal/core/domain"
)

// NotifyResult reports the outcome of a best-effort notification.
type NotifyResult struct {
	Sent bool
	Err  error
}

// Notifier sends account emails. Implementations never fail the caller; they
// report the outcome in NotifyResult.
type Notifier interface {
	SendWelcome(ctx context.Context, user *domain.User, tempPassword string) NotifyResult
	SendPasswordChanged(ctx context.Context, user *domain.User) NotifyResult
}
