package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
)

// WalletUseCase exposes the store-credit balance and its ledger.
type WalletUseCase struct {
	wallets repository.WalletRepository
}

// NewWalletUseCase constructs WalletUseCase.
func NewWalletUseCase(wallets repository.WalletRepository) *WalletUseCase {
	return &WalletUseCase{wallets: wallets}
}

// Balance returns the current store-credit balance.
func (u *WalletUseCase) Balance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	return u.wallets.Balance(ctx, customerID)
}

// History returns ledger entries sorted newest first.
func (u *WalletUseCase) History(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	return u.wallets.History(ctx, customerID)
}
