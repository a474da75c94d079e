package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	OrdersFn func(context.Context, int64) ([]usecase.OrderWithDeliveries, error)
}

// Orders returns predefined orders for the given customer.
func (s OrderFacadeStub) Orders(ctx context.Context, customerID int64) ([]usecase.OrderWithDeliveries, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, customerID)
	}
	return []usecase.OrderWithDeliveries{{
		Order: model.Order{ID: 1, CustomerID: customerID, Code: "PW-TEST0001", Status: model.OrderStatusActive},
	}}, nil
}

// DeliveryFacadeStub simulates skip and unskip transitions.
type DeliveryFacadeStub struct {
	SkipFn   func(context.Context, int64, int64, bool) (*usecase.DeliveryChange, error)
	UnskipFn func(context.Context, int64, int64, bool) (*usecase.DeliveryChange, error)
}

// SkipDelivery executes the configured skip handler.
func (s DeliveryFacadeStub) SkipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error) {
	if s.SkipFn != nil {
		return s.SkipFn(ctx, customerID, subOrderID, upcoming)
	}
	return &usecase.DeliveryChange{
		TotalAmount:   decimal.NewFromInt(80),
		SkippedAmount: decimal.NewFromInt(20),
		Moved:         decimal.NewFromInt(20),
	}, nil
}

// UnskipDelivery executes the configured unskip handler.
func (s DeliveryFacadeStub) UnskipDelivery(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error) {
	if s.UnskipFn != nil {
		return s.UnskipFn(ctx, customerID, subOrderID, upcoming)
	}
	return &usecase.DeliveryChange{
		TotalAmount:   decimal.NewFromInt(100),
		SkippedAmount: decimal.Zero,
		Moved:         decimal.NewFromInt(20),
	}, nil
}

// WalletFacadeStub simulates store-credit operations.
type WalletFacadeStub struct {
	BalanceFn func(context.Context, int64) (decimal.Decimal, error)
	HistoryFn func(context.Context, int64) ([]model.Transaction, error)
}

// WalletBalance returns the stored balance or default data.
func (s WalletFacadeStub) WalletBalance(ctx context.Context, customerID int64) (decimal.Decimal, error) {
	if s.BalanceFn != nil {
		return s.BalanceFn(ctx, customerID)
	}
	return decimal.NewFromInt(10), nil
}

// WalletHistory returns preconfigured ledger entries.
func (s WalletFacadeStub) WalletHistory(ctx context.Context, customerID int64) ([]model.Transaction, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, customerID)
	}
	return []model.Transaction{{
		ID:            1,
		TransactionID: "11111111-1111-1111-1111-111111111111",
		CustomerID:    customerID,
		Type:          model.TransactionCredit,
		Amount:        decimal.NewFromInt(10),
		CreatedAt:     time.Unix(0, 0),
	}}, nil
}

// CouponFacadeStub simulates coupon previews.
type CouponFacadeStub struct {
	PreviewFn func(context.Context, string, string, string, decimal.Decimal) (decimal.Decimal, error)
}

// PreviewCoupon executes the configured preview handler.
func (s CouponFacadeStub) PreviewCoupon(ctx context.Context, code, address, planType string, total decimal.Decimal) (decimal.Decimal, error) {
	if s.PreviewFn != nil {
		return s.PreviewFn(ctx, code, address, planType, total)
	}
	return decimal.NewFromInt(5), nil
}

// RefundFacadeStub simulates admin refunds.
type RefundFacadeStub struct {
	RefundFn func(context.Context, int64, int64, model.OrderKind, map[int64]int) (decimal.Decimal, error)
}

// RefundItems executes the configured refund handler.
func (s RefundFacadeStub) RefundItems(ctx context.Context, orderID, subOrderID int64, kind model.OrderKind, items map[int64]int) (decimal.Decimal, error) {
	if s.RefundFn != nil {
		return s.RefundFn(ctx, orderID, subOrderID, kind, items)
	}
	return decimal.NewFromInt(40), nil
}

// WebhookFacadeStub records processed payment events.
type WebhookFacadeStub struct {
	ProcessFn func(context.Context, model.PaymentEvent) error
	Events    []model.PaymentEvent
}

// ProcessPaymentEvent records the event or delegates to the override.
func (s *WebhookFacadeStub) ProcessPaymentEvent(ctx context.Context, event model.PaymentEvent) error {
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, event)
	}
	s.Events = append(s.Events, event)
	return nil
}

// HealthFacadeStub simulates readiness checks.
type HealthFacadeStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthFacadeStub) HealthCheck(ctx context.Context) error {
	return s.Err
}

// WorkerFacadeStub mimics worker interactions with the storefront facade.
type WorkerFacadeStub struct {
	Batches       [][]model.Notification
	BatchesFn     func(context.Context, int) ([]model.Notification, error)
	DeliverFn     func(context.Context, model.Notification) error
	MarkSentFn    func(context.Context, int64) error
	MarkFailedFn  func(context.Context, int64) error
	Delivered     []model.Notification
	Sent          []int64
	Failed        []int64
	mu            sync.Mutex
	batchCallsCnt int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// NotificationsForSending returns batches from the configured queue.
func (s *WorkerFacadeStub) NotificationsForSending(ctx context.Context, limit int) ([]model.Notification, error) {
	if s.BatchesFn != nil {
		return s.BatchesFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.batchCallsCnt, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// DeliverNotification records delivered notifications.
func (s *WorkerFacadeStub) DeliverNotification(ctx context.Context, n model.Notification) error {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Delivered = append(s.Delivered, n)
	return nil
}

// MarkNotificationSent records terminal success transitions.
func (s *WorkerFacadeStub) MarkNotificationSent(ctx context.Context, id int64) error {
	if s.MarkSentFn != nil {
		return s.MarkSentFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, id)
	return nil
}

// MarkNotificationFailed records terminal failure transitions.
func (s *WorkerFacadeStub) MarkNotificationFailed(ctx context.Context, id int64) error {
	if s.MarkFailedFn != nil {
		return s.MarkFailedFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, id)
	return nil
}

// DispatchClientStub simulates the delivery provider.
type DispatchClientStub struct {
	CreateFn func(context.Context, model.DispatchRequest) (string, error)
	CancelFn func(context.Context, string) error

	Created   []model.DispatchRequest
	Cancelled []string
}

// CreateDelivery records the request and returns a deterministic id.
func (s *DispatchClientStub) CreateDelivery(ctx context.Context, req model.DispatchRequest) (string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	s.Created = append(s.Created, req)
	return "disp-stub", nil
}

// CancelDelivery records the cancelled dispatch id.
func (s *DispatchClientStub) CancelDelivery(ctx context.Context, dispatchID string) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, dispatchID)
	}
	s.Cancelled = append(s.Cancelled, dispatchID)
	return nil
}

// PaymentClientStub simulates the billing provider.
type PaymentClientStub struct {
	CreateCouponFn func(context.Context, string, decimal.Decimal) (string, error)

	Coupons []PaymentCouponCall
}

// PaymentCouponCall records one CreateCoupon invocation.
type PaymentCouponCall struct {
	SubscriptionID string
	Amount         decimal.Decimal
}

// CreateCoupon records the request and returns a deterministic code.
func (s *PaymentClientStub) CreateCoupon(ctx context.Context, subscriptionID string, amount decimal.Decimal) (string, error) {
	if s.CreateCouponFn != nil {
		return s.CreateCouponFn(ctx, subscriptionID, amount)
	}
	s.Coupons = append(s.Coupons, PaymentCouponCall{SubscriptionID: subscriptionID, Amount: amount})
	return "coupon-stub", nil
}

// NotifyClientStub simulates the messaging provider.
type NotifyClientStub struct {
	SendFn func(context.Context, model.Notification) error
	Sent   []model.Notification
}

// Send records delivered notifications.
func (s *NotifyClientStub) Send(ctx context.Context, n model.Notification) error {
	if s.SendFn != nil {
		return s.SendFn(ctx, n)
	}
	s.Sent = append(s.Sent, n)
	return nil
}

// StorefrontFacadeStub aggregates the per-surface stubs into the full facade.
type StorefrontFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	DeliveryFacadeStub
	WalletFacadeStub
	CouponFacadeStub
	RefundFacadeStub
	WebhookFacadeStub
	HealthFacadeStub
}
