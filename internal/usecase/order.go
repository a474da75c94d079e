package usecase

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
)

// OrderWithDeliveries is an order joined with its per-delivery breakdown.
type OrderWithDeliveries struct {
	Order      model.Order
	Deliveries []DeliveryDetail
}

// DeliveryDetail is one suborder with its line items.
type DeliveryDetail struct {
	SubOrder model.SubOrder
	Items    []model.OrderItem
}

// OrderUseCase serves the customer-facing order read surface.
type OrderUseCase struct {
	orders    repository.OrderRepository
	subOrders repository.SubOrderRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, subOrders repository.SubOrderRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, subOrders: subOrders}
}

// ListByCustomer returns the customer's orders newest first, each with its
// deliveries and items.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, customerID int64) ([]OrderWithDeliveries, error) {
	orders, err := u.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	result := make([]OrderWithDeliveries, 0, len(orders))
	for _, order := range orders {
		subs, err := u.subOrders.ListByOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		detail := OrderWithDeliveries{Order: order}
		for _, sub := range subs {
			items, err := u.subOrders.Items(ctx, sub.ID)
			if err != nil {
				return nil, err
			}
			detail.Deliveries = append(detail.Deliveries, DeliveryDetail{SubOrder: sub, Items: items})
		}
		result = append(result, detail)
	}
	return result, nil
}
