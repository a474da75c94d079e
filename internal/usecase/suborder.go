package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/adapter/dispatch"
	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/repository"
)

// DeliveryChange reports the order totals after a skip or unskip, plus the
// amount that moved between the order and the wallet.
type DeliveryChange struct {
	TotalAmount   decimal.Decimal
	SkippedAmount decimal.Decimal
	Moved         decimal.Decimal
}

// SubOrderUseCase drives per-delivery skip and unskip transitions.
type SubOrderUseCase struct {
	subOrders repository.SubOrderRepository
	orders    repository.OrderRepository
	dispatch  dispatch.Client
	minTotal  decimal.Decimal
}

// NewSubOrderUseCase constructs SubOrderUseCase.
func NewSubOrderUseCase(subOrders repository.SubOrderRepository, orders repository.OrderRepository,
	dispatchClient dispatch.Client, minTotal decimal.Decimal) *SubOrderUseCase {
	return &SubOrderUseCase{subOrders: subOrders, orders: orders, dispatch: dispatchClient, minTotal: minTotal}
}

// verifyOwnership hides other customers' deliveries behind not-found.
func (u *SubOrderUseCase) verifyOwnership(ctx context.Context, customerID, subOrderID int64) error {
	sub, err := u.subOrders.GetByID(ctx, subOrderID)
	if err != nil {
		return err
	}
	order, err := u.orders.GetByID(ctx, sub.OrderID)
	if err != nil {
		return err
	}
	if order.CustomerID != customerID {
		return domainErrors.ErrNotFound
	}
	return nil
}

// Skip removes one delivery from the order and credits its value to the
// wallet. The provider delivery record is cancelled inside the same
// transaction, so a provider failure leaves everything untouched.
func (u *SubOrderUseCase) Skip(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*DeliveryChange, error) {
	if err := u.verifyOwnership(ctx, customerID, subOrderID); err != nil {
		return nil, err
	}
	decision, err := u.subOrders.ApplySkip(ctx, subOrderID, upcoming, u.minTotal, u.dispatch.CancelDelivery)
	if err != nil {
		return nil, err
	}
	return &DeliveryChange{
		TotalAmount:   decision.NewTotalAmount,
		SkippedAmount: decision.NewSkippedAmount,
		Moved:         decision.ItemsTotal,
	}, nil
}

// Unskip restores a skipped delivery, charging its value back from the
// wallet and re-booking the provider delivery.
func (u *SubOrderUseCase) Unskip(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*DeliveryChange, error) {
	if err := u.verifyOwnership(ctx, customerID, subOrderID); err != nil {
		return nil, err
	}
	decision, err := u.subOrders.ApplyUnskip(ctx, subOrderID, upcoming, u.dispatch.CreateDelivery)
	if err != nil {
		return nil, err
	}
	return &DeliveryChange{
		TotalAmount:   decision.NewTotalAmount,
		SkippedAmount: decision.NewSkippedAmount,
		Moved:         decision.ItemsTotal,
	}, nil
}
