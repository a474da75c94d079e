package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade serves the customer order read surface.
type OrderFacade interface {
	Orders(ctx context.Context, customerID int64) ([]usecase.OrderWithDeliveries, error)
}

// DeliveryFacade drives skip and unskip transitions.
type DeliveryFacade interface {
	SkipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error)
	UnskipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error)
}

// WalletFacade exposes the store-credit balance and ledger.
type WalletFacade interface {
	WalletBalance(ctx context.Context, customerID int64) (decimal.Decimal, error)
	WalletHistory(ctx context.Context, customerID int64) ([]model.Transaction, error)
}

// CouponFacade previews discount codes.
type CouponFacade interface {
	PreviewCoupon(ctx context.Context, code, address, planType string, total decimal.Decimal) (decimal.Decimal, error)
}

// RefundFacade issues admin-driven partial refunds.
type RefundFacade interface {
	RefundItems(ctx context.Context, orderID, subOrderID int64, kind model.OrderKind, requested map[int64]int) (decimal.Decimal, error)
}

// WebhookFacade processes payment provider events.
type WebhookFacade interface {
	ProcessPaymentEvent(ctx context.Context, event model.PaymentEvent) error
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	OrderFacade
	DeliveryFacade
	WalletFacade
	CouponFacade
	RefundFacade
	WebhookFacade
	HealthFacade
}
