package repository

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
)

// CustomerRepository describes persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByProviderRef(ctx context.Context, ref string) (*model.Customer, error)
	Preferences(ctx context.Context, customerID int64) ([]model.DayPreference, error)
}
