package usecase

import (
	"context"

	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/repository"
)

// RefundUseCase issues partial per-item refunds as wallet credit.
type RefundUseCase struct {
	subOrders repository.SubOrderRepository
}

// NewRefundUseCase constructs RefundUseCase.
func NewRefundUseCase(subOrders repository.SubOrderRepository) *RefundUseCase {
	return &RefundUseCase{subOrders: subOrders}
}

// Refund credits the requested item quantities back to the customer wallet.
// The whole request is approved or rejected as one unit.
func (u *RefundUseCase) Refund(ctx context.Context, req lifecycle.RefundRequest) (*lifecycle.RefundDecision, error) {
	return u.subOrders.ApplyRefund(ctx, req)
}
