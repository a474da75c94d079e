package repository

import "context"

// WebhookEventRepository deduplicates payment-provider events.
type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
}
