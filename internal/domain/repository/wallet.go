package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/model"
)

// WalletRepository manages the customer store-credit balance and its
// append-only ledger. Credit and Debit atomically update the balance and
// append exactly one ledger entry.
type WalletRepository interface {
	Balance(ctx context.Context, customerID int64) (decimal.Decimal, error)
	Credit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error
	Debit(ctx context.Context, customerID int64, amount decimal.Decimal, description string) error
	History(ctx context.Context, customerID int64) ([]model.Transaction, error)
}
