package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/platewise/platewise/internal/adapter/dispatch"
	"github.com/platewise/platewise/internal/adapter/payment"
	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/domain/repository"
)

// RolloverUseCase turns a confirmed renewal payment into the next billing
// cycle: the active order completes, the upcoming one activates, deliveries
// get booked, accumulated wallet credit discounts the next invoice, and a
// fresh upcoming order is synthesized from the customer's saved preferences.
type RolloverUseCase struct {
	customers     repository.CustomerRepository
	rollovers     repository.RolloverRepository
	subOrders     repository.SubOrderRepository
	wallets       repository.WalletRepository
	webhookEvents repository.WebhookEventRepository
	notifications repository.NotificationRepository
	dispatch      dispatch.Client
	payment       payment.Client
	coupons       *CouponUseCase
	logger        *slog.Logger
	deliveryFee   decimal.Decimal
	freeThreshold decimal.Decimal
	now           func() time.Time
}

// NewRolloverUseCase constructs RolloverUseCase.
func NewRolloverUseCase(
	customers repository.CustomerRepository,
	rollovers repository.RolloverRepository,
	subOrders repository.SubOrderRepository,
	wallets repository.WalletRepository,
	webhookEvents repository.WebhookEventRepository,
	notifications repository.NotificationRepository,
	dispatchClient dispatch.Client,
	paymentClient payment.Client,
	coupons *CouponUseCase,
	logger *slog.Logger,
	deliveryFee, freeThreshold decimal.Decimal,
) *RolloverUseCase {
	return &RolloverUseCase{
		customers:     customers,
		rollovers:     rollovers,
		subOrders:     subOrders,
		wallets:       wallets,
		webhookEvents: webhookEvents,
		notifications: notifications,
		dispatch:      dispatchClient,
		payment:       paymentClient,
		coupons:       coupons,
		logger:        logger,
		deliveryFee:   deliveryFee,
		freeThreshold: freeThreshold,
		now:           time.Now,
	}
}

// newOrderCode mints a customer-visible order code.
func newOrderCode() string {
	return "PW-" + strings.ToUpper(uuid.NewString()[:8])
}

// Process handles one provider webhook event. Duplicate events return
// ErrAlreadyExists so the transport can acknowledge without reprocessing;
// events of other types are acknowledged untouched.
func (u *RolloverUseCase) Process(ctx context.Context, event model.PaymentEvent) error {
	if event.Type != model.EventRecurringPaymentSucceeded {
		return nil
	}
	if event.EventID == "" {
		return fmt.Errorf("payment event without id")
	}

	seen, err := u.webhookEvents.Exists(ctx, event.EventID)
	if err != nil {
		return err
	}
	if seen {
		return domainErrors.ErrAlreadyExists
	}

	customer, err := u.resolveCustomer(ctx, event)
	if err != nil {
		return err
	}

	transition, err := u.rollovers.CompleteAndActivate(ctx, event.EventID, event.InvoiceID, customer.ID)
	if err != nil {
		return err
	}

	u.logger.Info("cycle rolled over",
		slog.Int64("customer", customer.ID),
		slog.String("event", event.EventID),
		slog.String("invoice", event.InvoiceID))

	if transition.Activated != nil {
		u.bookDeliveries(ctx, transition.Activated, transition.SubOrders)
	}

	if event.CouponCode != "" {
		if err := u.coupons.Commit(ctx, event.CouponCode, customer.Address); err != nil {
			u.logger.Error("coupon redemption record failed",
				slog.Int64("customer", customer.ID),
				slog.String("coupon", event.CouponCode),
				slog.String("error", err.Error()))
		}
	}

	u.applyWalletDiscount(ctx, customer, event)

	if err := u.createNextCycle(ctx, customer, transition); err != nil {
		u.logger.Error("next cycle creation failed",
			slog.Int64("customer", customer.ID), slog.String("error", err.Error()))
	}

	if err := u.notifications.Enqueue(ctx, model.Notification{
		CustomerID: customer.ID,
		Channel:    model.ChannelEmail,
		Template:   "subscription_renewed",
		Payload: map[string]string{
			"invoice_id": event.InvoiceID,
			"total":      event.InvoiceTotal.StringFixed(2),
		},
	}); err != nil {
		u.logger.Error("renewal notification enqueue failed",
			slog.Int64("customer", customer.ID), slog.String("error", err.Error()))
	}

	return nil
}

// resolveCustomer matches the event to a customer by provider reference,
// falling back to the billing email.
func (u *RolloverUseCase) resolveCustomer(ctx context.Context, event model.PaymentEvent) (*model.Customer, error) {
	if event.CustomerRef != "" {
		customer, err := u.customers.GetByProviderRef(ctx, event.CustomerRef)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}
	if event.Email != "" {
		return u.customers.GetByEmail(ctx, strings.ToLower(event.Email))
	}
	return nil, domainErrors.ErrNotFound
}

// bookDeliveries fans provider bookings out concurrently. A failed booking
// is logged and left without a dispatch id; it does not fail the rollover.
func (u *RolloverUseCase) bookDeliveries(ctx context.Context, order *model.Order, subs []model.SubOrder) {
	var wg sync.WaitGroup
	for _, sub := range subs {
		if sub.Status != model.SubOrderStatusAccepted || sub.DispatchID != nil {
			continue
		}
		wg.Add(1)
		go func(sub model.SubOrder) {
			defer wg.Done()
			dispatchID, err := u.dispatch.CreateDelivery(ctx, model.DispatchRequest{
				OrderCode:    order.Code,
				SubOrderID:   sub.ID,
				Address:      order.ShippingAddress,
				DeliveryDate: sub.DeliveryDate,
				SlotStart:    sub.SlotStart,
				SlotEnd:      sub.SlotEnd,
			})
			if err != nil {
				u.logger.Error("delivery booking failed",
					slog.Int64("suborder", sub.ID), slog.String("error", err.Error()))
				return
			}
			if err := u.subOrders.SetDispatchID(ctx, sub.ID, dispatchID); err != nil {
				u.logger.Error("dispatch id persist failed",
					slog.Int64("suborder", sub.ID), slog.String("error", err.Error()))
			}
		}(sub)
	}
	wg.Wait()
}

// applyWalletDiscount converts accumulated store credit into a one-off
// provider coupon on the next invoice. The wallet is debited only after the
// provider accepted the coupon.
func (u *RolloverUseCase) applyWalletDiscount(ctx context.Context, customer *model.Customer, event model.PaymentEvent) {
	balance, err := u.wallets.Balance(ctx, customer.ID)
	if err != nil {
		u.logger.Error("wallet balance read failed",
			slog.Int64("customer", customer.ID), slog.String("error", err.Error()))
		return
	}

	discount := lifecycle.WalletDiscount(balance, event.InvoiceTotal)
	if !discount.IsPositive() || event.SubscriptionID == "" {
		return
	}

	couponID, err := u.payment.CreateCoupon(ctx, event.SubscriptionID, discount)
	if err != nil {
		u.logger.Error("provider coupon creation failed",
			slog.Int64("customer", customer.ID), slog.String("error", err.Error()))
		return
	}

	note := fmt.Sprintf("renewal discount via coupon %s", couponID)
	if err := u.wallets.Debit(ctx, customer.ID, discount, note); err != nil {
		u.logger.Error("wallet debit after coupon failed",
			slog.Int64("customer", customer.ID), slog.String("error", err.Error()))
	}
}

// createNextCycle synthesizes the following week's upcoming order from the
// saved day preferences. Customers without preferences simply get no
// upcoming order.
func (u *RolloverUseCase) createNextCycle(ctx context.Context, customer *model.Customer, transition *repository.RolloverTransition) error {
	prefs, err := u.customers.Preferences(ctx, customer.ID)
	if err != nil {
		return err
	}
	if len(prefs) == 0 {
		return nil
	}

	weekStart := u.now().AddDate(0, 0, 7)
	if transition.Activated != nil {
		weekStart = transition.Activated.FirstDeliveryDate.AddDate(0, 0, 7)
	}

	draft := lifecycle.BuildUpcomingOrder(customer, prefs, weekStart, newOrderCode(), u.deliveryFee, u.freeThreshold)
	if len(draft.SubOrders) == 0 {
		return nil
	}

	_, err = u.rollovers.CreateUpcomingOrder(ctx, draft)
	return err
}
