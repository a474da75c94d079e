// Package lifecycle holds the pure decision logic for order lifecycle and
// money movement. Functions here never touch storage or external providers;
// callers load the aggregate, decide, then apply the decision inside a
// transaction that re-validates against the locked rows.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/model"
)

// SkipDecision captures the state and money effects of skipping one delivery.
type SkipDecision struct {
	OrderID          int64
	SubOrderID       int64
	CustomerID       int64
	ItemsTotal       decimal.Decimal
	NewTotalAmount   decimal.Decimal
	NewSkippedAmount decimal.Decimal
	DispatchID       string
	Note             string
}

// UnskipDecision captures the effects of restoring a skipped delivery.
type UnskipDecision struct {
	OrderID          int64
	SubOrderID       int64
	CustomerID       int64
	ItemsTotal       decimal.Decimal
	NewTotalAmount   decimal.Decimal
	NewSkippedAmount decimal.Decimal
	Note             string
}

// ItemCredit is the approved refund for a single line item.
type ItemCredit struct {
	OrderItemID int64
	ItemID      string
	Quantity    int
	Amount      decimal.Decimal
}

// RefundRequest scopes an admin refund to one delivery within one order.
// Items maps order item ids to the quantity being credited back.
type RefundRequest struct {
	OrderID    int64
	SubOrderID int64
	Kind       model.OrderKind
	Items      map[int64]int
}

// RefundDecision captures an approved per-item refund. Either every
// requested line is approved or the whole request is rejected.
// FullyRefunded reports that no refundable quantity remains afterwards.
type RefundDecision struct {
	OrderID       int64
	SubOrderID    int64
	CustomerID    int64
	Credits       []ItemCredit
	Total         decimal.Decimal
	FullyRefunded bool
}

// ItemsTotal sums price times not-yet-refunded quantity across items.
// Already-refunded units never move money again.
func ItemsTotal(items []model.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		qty := item.RefundableQuantity()
		if qty <= 0 {
			continue
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2)
}

func expectedBucket(upcoming bool) model.OrderStatus {
	if upcoming {
		return model.OrderStatusUpcoming
	}
	return model.OrderStatusActive
}

// DecideSkip validates a skip request and computes its effects. Preconditions
// are checked in order; the first failure wins.
func DecideSkip(order *model.Order, sub *model.SubOrder, items []model.OrderItem, upcoming bool, minTotal decimal.Decimal) (*SkipDecision, error) {
	if order == nil || sub == nil || sub.OrderID != order.ID {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != expectedBucket(upcoming) {
		return nil, domainErrors.ErrNotFound
	}
	if sub.Status != model.SubOrderStatusAccepted {
		return nil, domainErrors.SkipConflict(string(sub.Status))
	}

	itemsTotal := ItemsTotal(items)
	remaining := order.TotalAmount.Sub(order.SkippedAmount).Sub(itemsTotal)
	if remaining.LessThan(minTotal) {
		return nil, domainErrors.ErrBelowMinimumTotal
	}

	d := &SkipDecision{
		OrderID:          order.ID,
		SubOrderID:       sub.ID,
		CustomerID:       order.CustomerID,
		ItemsTotal:       itemsTotal,
		NewTotalAmount:   order.TotalAmount.Sub(itemsTotal),
		NewSkippedAmount: order.SkippedAmount.Add(itemsTotal),
		Note:             fmt.Sprintf("skip credit for delivery #%d", sub.ID),
	}
	if sub.DispatchID != nil {
		d.DispatchID = *sub.DispatchID
	}
	return d, nil
}

// DecideUnskip validates restoring a skipped delivery. The wallet must cover
// the re-added amount; balance is re-read under lock at apply time.
func DecideUnskip(order *model.Order, sub *model.SubOrder, items []model.OrderItem, upcoming bool, balance decimal.Decimal) (*UnskipDecision, error) {
	if order == nil || sub == nil || sub.OrderID != order.ID {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != expectedBucket(upcoming) {
		return nil, domainErrors.ErrNotFound
	}
	if sub.Status != model.SubOrderStatusSkipped {
		return nil, domainErrors.UnskipConflict(string(sub.Status))
	}

	itemsTotal := ItemsTotal(items)
	if balance.LessThan(itemsTotal) {
		return nil, domainErrors.ErrInsufficientWallet
	}

	return &UnskipDecision{
		OrderID:          order.ID,
		SubOrderID:       sub.ID,
		CustomerID:       order.CustomerID,
		ItemsTotal:       itemsTotal,
		NewTotalAmount:   order.TotalAmount.Add(itemsTotal),
		NewSkippedAmount: order.SkippedAmount.Sub(itemsTotal),
		Note:             fmt.Sprintf("unskip charge for delivery #%d", sub.ID),
	}, nil
}

// DecideRefund validates a per-item refund request against the delivery's
// status and quantity bounds. Any violation rejects the whole request;
// nothing is partially applied. Skipped deliveries were already credited by
// the skip, so refunding them again would pay the same goods twice.
func DecideRefund(order *model.Order, sub *model.SubOrder, items []model.OrderItem, req RefundRequest) (*RefundDecision, error) {
	if order == nil || sub == nil || sub.OrderID != order.ID {
		return nil, domainErrors.ErrNotFound
	}
	if order.ID != req.OrderID || sub.ID != req.SubOrderID || order.Kind != req.Kind {
		return nil, domainErrors.ErrNotFound
	}
	if order.CustomerID == 0 {
		return nil, fmt.Errorf("guest order refunds: %w", domainErrors.ErrNotSupported)
	}
	switch sub.Status {
	case model.SubOrderStatusSkipped, model.SubOrderStatusCancelled, model.SubOrderStatusRefunded:
		return nil, domainErrors.RefundConflict(string(sub.Status))
	}

	byID := make(map[int64]model.OrderItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	decision := &RefundDecision{
		OrderID:    order.ID,
		SubOrderID: sub.ID,
		CustomerID: order.CustomerID,
		Total:      decimal.Zero,
	}

	approved := make(map[int64]int, len(req.Items))
	for itemID, qty := range req.Items {
		if qty == 0 {
			continue
		}
		item, ok := byID[itemID]
		if !ok {
			return nil, fmt.Errorf("item %d is not on this delivery: %w", itemID, domainErrors.ErrNotFound)
		}
		if qty < 0 || qty > item.Quantity {
			return nil, fmt.Errorf("item %d: refund quantity %d out of bounds: %w", itemID, qty, domainErrors.ErrInvalidAmount)
		}
		if qty > item.RefundableQuantity() {
			return nil, fmt.Errorf("item %d: only %d units left to refund: %w", itemID, item.RefundableQuantity(), domainErrors.ErrInvalidAmount)
		}
		if item.RefundQuantity+qty > item.Quantity {
			return nil, fmt.Errorf("item %d: refund would exceed ordered quantity: %w", itemID, domainErrors.ErrInvalidAmount)
		}

		amount := item.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		decision.Credits = append(decision.Credits, ItemCredit{
			OrderItemID: item.ID,
			ItemID:      item.ItemID,
			Quantity:    qty,
			Amount:      amount,
		})
		decision.Total = decision.Total.Add(amount)
		approved[item.ID] = qty
	}

	if len(decision.Credits) == 0 {
		return nil, domainErrors.ErrNoRefundChanges
	}

	decision.FullyRefunded = true
	for _, item := range items {
		if item.RefundQuantity+approved[item.ID] < item.Quantity {
			decision.FullyRefunded = false
			break
		}
	}
	return decision, nil
}

// ValidateCoupon applies the usage-limit and plan rules to an already-looked-up
// coupon. addressUsage is the caller address's redemption count so far.
func ValidateCoupon(c *model.Coupon, addressUsage int, planType string) error {
	if c.AddressUsageLimit > 0 && addressUsage >= c.AddressUsageLimit {
		return domainErrors.ErrCouponAddressLimit
	}
	if c.MaxUsageLimit > 0 && c.UsageCount >= c.MaxUsageLimit {
		return domainErrors.ErrCouponExhausted
	}
	if c.PlanType != "" && planType != "" && c.PlanType != planType {
		return domainErrors.ErrCouponPlanMismatch
	}
	return nil
}

// CouponDiscount computes the discount a coupon grants against a total. A
// fixed-amount coupon can zero the total out but never imply a credit.
func CouponDiscount(c *model.Coupon, total decimal.Decimal) decimal.Decimal {
	if c.DiscountPercentage > 0 {
		pct := decimal.NewFromInt(int64(c.DiscountPercentage))
		return total.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	}
	if c.DiscountAmount.GreaterThan(total) {
		return total
	}
	return c.DiscountAmount.Round(2)
}

// WalletDiscount is the same-cycle discount a wallet balance buys against an
// invoice: the lesser of the two.
func WalletDiscount(balance, invoiceTotal decimal.Decimal) decimal.Decimal {
	if balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if balance.GreaterThan(invoiceTotal) {
		return invoiceTotal.Round(2)
	}
	return balance.Round(2)
}

// BuildUpcomingOrder replays the customer's saved weekday preferences onto
// the week starting at weekStart, producing the next upcoming order draft.
// The delivery fee applies only below the free-delivery threshold.
func BuildUpcomingOrder(customer *model.Customer, prefs []model.DayPreference, weekStart time.Time, code string, deliveryFee, freeThreshold decimal.Decimal) model.OrderDraft {
	draft := model.OrderDraft{
		CustomerID:        customer.ID,
		Code:              code,
		Kind:              model.OrderKindSubscription,
		Status:            model.OrderStatusUpcoming,
		ShippingAddress:   customer.Address,
		FirstDeliveryDate: weekStart,
		TotalAmount:       decimal.Zero,
	}

	first := time.Time{}
	for _, pref := range prefs {
		offset := (int(pref.Weekday) - int(weekStart.Weekday()) + 7) % 7
		date := weekStart.AddDate(0, 0, offset)
		if first.IsZero() || date.Before(first) {
			first = date
		}

		sub := model.SubOrderDraft{
			DeliveryDate: date,
			SlotStart:    pref.SlotStart,
			SlotEnd:      pref.SlotEnd,
		}
		for _, item := range pref.Items {
			if item.Quantity <= 0 {
				continue
			}
			sub.Items = append(sub.Items, item)
			draft.TotalAmount = draft.TotalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		draft.SubOrders = append(draft.SubOrders, sub)
	}

	draft.TotalAmount = draft.TotalAmount.Round(2)
	if draft.TotalAmount.LessThan(freeThreshold) {
		draft.DeliveryFee = deliveryFee
		draft.TotalAmount = draft.TotalAmount.Add(deliveryFee)
	}
	if !first.IsZero() {
		draft.FirstDeliveryDate = first
	}
	return draft
}
