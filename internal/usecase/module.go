package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/platewise/platewise/internal/adapter/dispatch"
	"github.com/platewise/platewise/internal/adapter/payment"
	"github.com/platewise/platewise/internal/config"
	"github.com/platewise/platewise/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewOrderUseCase,
	NewWalletUseCase,
	NewCouponUseCase,
	NewRefundUseCase,
	newSubOrderUseCase,
	newRolloverUseCase,
)

type subOrderParams struct {
	fx.In

	SubOrders repository.SubOrderRepository
	Orders    repository.OrderRepository
	Dispatch  dispatch.Client
	Config    *config.Config
}

func newSubOrderUseCase(p subOrderParams) *SubOrderUseCase {
	return NewSubOrderUseCase(p.SubOrders, p.Orders, p.Dispatch, p.Config.MinSubscriptionTotal)
}

type rolloverParams struct {
	fx.In

	Customers     repository.CustomerRepository
	Rollovers     repository.RolloverRepository
	SubOrders     repository.SubOrderRepository
	Wallets       repository.WalletRepository
	WebhookEvents repository.WebhookEventRepository
	Notifications repository.NotificationRepository
	Dispatch      dispatch.Client
	Payment       payment.Client
	Coupons       *CouponUseCase
	Logger        *slog.Logger
	Config        *config.Config
}

func newRolloverUseCase(p rolloverParams) *RolloverUseCase {
	return NewRolloverUseCase(
		p.Customers, p.Rollovers, p.SubOrders, p.Wallets, p.WebhookEvents, p.Notifications,
		p.Dispatch, p.Payment, p.Coupons, p.Logger, p.Config.DeliveryFee, p.Config.FreeDeliveryThreshold,
	)
}
