package repository

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
)

// RolloverTransition reports the orders moved by a cycle rollover.
type RolloverTransition struct {
	Completed *model.Order
	Activated *model.Order
	SubOrders []model.SubOrder
}

// RolloverRepository holds the transactional steps of the cycle rollover.
type RolloverRepository interface {
	// CompleteAndActivate marks the active order COMPLETED, promotes the
	// upcoming order to ACTIVE with the provider invoice id attached, and
	// records the webhook event id, all in one transaction. A duplicate
	// event id fails with ErrAlreadyExists before any state changes.
	CompleteAndActivate(ctx context.Context, eventID, invoiceID string, customerID int64) (*RolloverTransition, error)
	// CreateUpcomingOrder persists the synthesized next-cycle order with its
	// suborders and items.
	CreateUpcomingOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, error)
}
