package repository

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
)

// NotificationRepository is the outbox for best-effort customer notices.
type NotificationRepository interface {
	Enqueue(ctx context.Context, n model.Notification) error
	SelectBatchForSending(ctx context.Context, limit int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}
