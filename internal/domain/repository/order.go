package repository

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
)

// OrderRepository describes read operations over orders.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error)
	GetByCustomerAndStatus(ctx context.Context, customerID int64, status model.OrderStatus) (*model.Order, error)
}
