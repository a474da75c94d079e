package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
	"github.com/platewise/platewise/internal/usecase"
)

// Messenger delivers queued notifications to the messaging provider.
type Messenger interface {
	Send(ctx context.Context, n model.Notification) error
}

// HealthChecker reports readiness of the backing store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the transport and worker layers
// talk to.
type StorefrontFacade struct {
	auth          *usecase.AuthUseCase
	orders        *usecase.OrderUseCase
	subOrders     *usecase.SubOrderUseCase
	wallets       *usecase.WalletUseCase
	coupons       *usecase.CouponUseCase
	refunds       *usecase.RefundUseCase
	rollovers     *usecase.RolloverUseCase
	notifications repository.NotificationRepository
	messenger     Messenger
	health        HealthChecker
}

func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	subOrders *usecase.SubOrderUseCase,
	wallets *usecase.WalletUseCase,
	coupons *usecase.CouponUseCase,
	refunds *usecase.RefundUseCase,
	rollovers *usecase.RolloverUseCase,
	notifications repository.NotificationRepository,
	messenger Messenger,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:          auth,
		orders:        orders,
		subOrders:     subOrders,
		wallets:       wallets,
		coupons:       coupons,
		refunds:       refunds,
		rollovers:     rollovers,
		notifications: notifications,
		messenger:     messenger,
		health:        health,
	}
}

func (f *StorefrontFacade) Register(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, password)
	return token, err
}

func (f *StorefrontFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *StorefrontFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) Orders(ctx context.Context, customerID int64) ([]usecase.OrderWithDeliveries, error) {
	return f.orders.ListByCustomer(ctx, customerID)
}

func (f *StorefrontFacade) SkipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error) {
	return f.subOrders.Skip(ctx, customerID, subOrderID, upcoming)
}

func (f *StorefrontFacade) UnskipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error) {
	return f.subOrders.Unskip(ctx, customerID, subOrderID, upcoming)
}

func (f *StorefrontFacade) WalletBalance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	return f.wallets.Balance(ctx, customerID)
}

func (f *StorefrontFacade) WalletHistory(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	return f.wallets.History(ctx, customerID)
}

func (f *StorefrontFacade) PreviewCoupon(ctx context.Context, code, address, planType string, total decimal.Decimal) (decimal.Decimal, error) {
	return f.coupons.Preview(ctx, code, address, planType, total)
}

func (f *StorefrontFacade) RefundItems(ctx context.Context, orderID, subOrderID int64, kind model.OrderKind, items map[int64]int) (decimal.Decimal, error) {
	decision, err := f.refunds.Refund(ctx, lifecycle.RefundRequest{
		OrderID:    orderID,
		SubOrderID: subOrderID,
		Kind:       kind,
		Items:      items,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return decision.Total, nil
}

func (f *StorefrontFacade) ProcessPaymentEvent(ctx context.Context, event model.PaymentEvent) error {
	return f.rollovers.Process(ctx, event)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *StorefrontFacade) NotificationsForSending(ctx context.Context, limit int) ([]model.Notification, error) {
	return f.notifications.SelectBatchForSending(ctx, limit)
}

func (f *StorefrontFacade) DeliverNotification(ctx context.Context, n model.Notification) error {
	return f.messenger.Send(ctx, n)
}

func (f *StorefrontFacade) MarkNotificationSent(ctx context.Context, id int64) error {
	return f.notifications.MarkSent(ctx, id)
}

func (f *StorefrontFacade) MarkNotificationFailed(ctx context.Context, id int64) error {
	return f.notifications.MarkFailed(ctx, id)
}
