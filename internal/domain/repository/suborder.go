package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
)

// DispatchCancel cancels a live delivery record; called inside the skip
// transaction so a provider failure aborts the commit.
type DispatchCancel func(ctx context.Context, dispatchID string) error

// DispatchCreate creates a delivery record and returns its id; called inside
// the unskip transaction for the same reason.
type DispatchCreate func(ctx context.Context, req model.DispatchRequest) (string, error)

// SubOrderRepository manages per-delivery state transitions. Apply methods
// re-validate the aggregate under row locks and commit status, totals,
// wallet mutation, ledger entry and notification together.
type SubOrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.SubOrder, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.SubOrder, error)
	Items(ctx context.Context, subOrderID int64) ([]model.OrderItem, error)
	SetDispatchID(ctx context.Context, subOrderID int64, dispatchID string) error
	ApplySkip(ctx context.Context, subOrderID int64, upcoming bool, minTotal decimal.Decimal, cancel DispatchCancel) (*lifecycle.SkipDecision, error)
	ApplyUnskip(ctx context.Context, subOrderID int64, upcoming bool, create DispatchCreate) (*lifecycle.UnskipDecision, error)
	ApplyRefund(ctx context.Context, req lifecycle.RefundRequest) (*lifecycle.RefundDecision, error)
}
