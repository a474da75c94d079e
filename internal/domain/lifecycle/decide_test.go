package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/model"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func activeOrder() *model.Order {
	return &model.Order{
		ID:            1,
		CustomerID:    7,
		Kind:          model.OrderKindSubscription,
		Status:        model.OrderStatusActive,
		TotalAmount:   dec("400"),
		SkippedAmount: decimal.Zero,
	}
}

func acceptedSubOrder() *model.SubOrder {
	dispatchID := "disp-42"
	return &model.SubOrder{
		ID:         10,
		OrderID:    1,
		Status:     model.SubOrderStatusAccepted,
		DispatchID: &dispatchID,
	}
}

func refundFor(items map[int64]int) RefundRequest {
	return RefundRequest{OrderID: 1, SubOrderID: 10, Kind: model.OrderKindSubscription, Items: items}
}

func twoItems() []model.OrderItem {
	return []model.OrderItem{
		{ID: 100, SubOrderID: 10, ItemID: "meal-a", Price: dec("20"), Quantity: 3},
		{ID: 101, SubOrderID: 10, ItemID: "meal-b", Price: dec("10"), Quantity: 2},
	}
}

func TestDecideSkipMovesItemsTotal(t *testing.T) {
	d, err := DecideSkip(activeOrder(), acceptedSubOrder(), twoItems(), false, dec("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.ItemsTotal.Equal(dec("80")) {
		t.Fatalf("expected items total 80, got %s", d.ItemsTotal)
	}
	if !d.NewTotalAmount.Equal(dec("320")) || !d.NewSkippedAmount.Equal(dec("80")) {
		t.Fatalf("expected 320/80, got %s/%s", d.NewTotalAmount, d.NewSkippedAmount)
	}
	if d.DispatchID != "disp-42" {
		t.Fatalf("expected dispatch id to be carried, got %q", d.DispatchID)
	}
}

func TestDecideSkipExcludesRefundedQuantity(t *testing.T) {
	items := twoItems()
	items[0].RefundQuantity = 1
	d, err := DecideSkip(activeOrder(), acceptedSubOrder(), items, false, dec("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.ItemsTotal.Equal(dec("60")) {
		t.Fatalf("expected 60 after excluding a refunded unit, got %s", d.ItemsTotal)
	}
}

func TestDecideSkipRejectsBelowMinimum(t *testing.T) {
	order := activeOrder()
	order.TotalAmount = dec("150")
	_, err := DecideSkip(order, acceptedSubOrder(), twoItems(), false, dec("100"))
	if !errors.Is(err, domainErrors.ErrBelowMinimumTotal) {
		t.Fatalf("expected minimum total rejection, got %v", err)
	}
}

func TestDecideSkipStateConflicts(t *testing.T) {
	statuses := []model.SubOrderStatus{
		model.SubOrderStatusSkipped,
		model.SubOrderStatusCancelled,
		model.SubOrderStatusDelivered,
		model.SubOrderStatusPreparing,
		model.SubOrderStatusOutForDelivery,
	}
	seen := make(map[string]bool)
	for _, status := range statuses {
		sub := acceptedSubOrder()
		sub.Status = status
		_, err := DecideSkip(activeOrder(), sub, twoItems(), false, dec("100"))
		var conflict *domainErrors.StateConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("status %s: expected state conflict, got %v", status, err)
		}
		if seen[conflict.Reason] {
			t.Fatalf("status %s: reason %q reused for another state", status, conflict.Reason)
		}
		seen[conflict.Reason] = true
	}
}

func TestDecideSkipWrongBucket(t *testing.T) {
	if _, err := DecideSkip(activeOrder(), acceptedSubOrder(), twoItems(), true, dec("100")); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("active order addressed as upcoming should not be found, got %v", err)
	}
}

func TestSkipUnskipRoundTrip(t *testing.T) {
	order := activeOrder()
	sub := acceptedSubOrder()
	items := twoItems()

	skip, err := DecideSkip(order, sub, items, false, dec("100"))
	if err != nil {
		t.Fatalf("skip: %v", err)
	}

	order.TotalAmount = skip.NewTotalAmount
	order.SkippedAmount = skip.NewSkippedAmount
	sub.Status = model.SubOrderStatusSkipped
	sub.DispatchID = nil

	unskip, err := DecideUnskip(order, sub, items, false, skip.ItemsTotal)
	if err != nil {
		t.Fatalf("unskip: %v", err)
	}
	if !unskip.NewTotalAmount.Equal(dec("400")) || !unskip.NewSkippedAmount.Equal(decimal.Zero) {
		t.Fatalf("round trip should restore 400/0, got %s/%s", unskip.NewTotalAmount, unskip.NewSkippedAmount)
	}
	if !unskip.ItemsTotal.Equal(skip.ItemsTotal) {
		t.Fatalf("unskip amount %s differs from skip credit %s", unskip.ItemsTotal, skip.ItemsTotal)
	}
}

func TestDecideUnskipRequiresWalletCover(t *testing.T) {
	sub := acceptedSubOrder()
	sub.Status = model.SubOrderStatusSkipped
	order := activeOrder()
	order.TotalAmount = dec("320")
	order.SkippedAmount = dec("80")

	_, err := DecideUnskip(order, sub, twoItems(), false, dec("79.99"))
	if !errors.Is(err, domainErrors.ErrInsufficientWallet) {
		t.Fatalf("expected insufficient wallet, got %v", err)
	}
}

func TestDecideUnskipRejectsNonSkipped(t *testing.T) {
	_, err := DecideUnskip(activeOrder(), acceptedSubOrder(), twoItems(), false, dec("1000"))
	if !errors.Is(err, domainErrors.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDecideRefundQuantityBounds(t *testing.T) {
	order := activeOrder()
	sub := acceptedSubOrder()
	items := []model.OrderItem{{ID: 100, SubOrderID: 10, ItemID: "meal-a", Price: dec("20"), Quantity: 3, RefundQuantity: 1}}

	d, err := DecideRefund(order, sub, items, refundFor(map[int64]int{100: 2}))
	if err != nil {
		t.Fatalf("1+2<=3 should be allowed: %v", err)
	}
	if !d.Total.Equal(dec("40")) {
		t.Fatalf("expected refund total 40, got %s", d.Total)
	}

	if _, err := DecideRefund(order, sub, items, refundFor(map[int64]int{100: 3})); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("1+3>3 should be rejected, got %v", err)
	}
}

func TestDecideRefundRejectsNoChanges(t *testing.T) {
	_, err := DecideRefund(activeOrder(), acceptedSubOrder(), twoItems(), refundFor(map[int64]int{100: 0}))
	if !errors.Is(err, domainErrors.ErrNoRefundChanges) {
		t.Fatalf("expected no-changes rejection, got %v", err)
	}
}

func TestDecideRefundAllOrNothing(t *testing.T) {
	items := twoItems()
	_, err := DecideRefund(activeOrder(), acceptedSubOrder(), items, refundFor(map[int64]int{100: 1, 101: 5}))
	if !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("one bad line should fail the whole request, got %v", err)
	}
}

func TestDecideRefundGuestOrder(t *testing.T) {
	order := activeOrder()
	order.CustomerID = 0
	_, err := DecideRefund(order, acceptedSubOrder(), twoItems(), refundFor(map[int64]int{100: 1}))
	if !errors.Is(err, domainErrors.ErrNotSupported) {
		t.Fatalf("guest refunds must be unsupported, got %v", err)
	}
}

func TestDecideRefundSkippedDeliveryAlreadyCredited(t *testing.T) {
	order := activeOrder()
	sub := acceptedSubOrder()
	items := twoItems()

	skip, err := DecideSkip(order, sub, items, false, dec("100"))
	if err != nil {
		t.Fatalf("unexpected skip error: %v", err)
	}
	if !skip.ItemsTotal.Equal(dec("80")) {
		t.Fatalf("expected skip credit 80, got %s", skip.ItemsTotal)
	}
	order.TotalAmount = skip.NewTotalAmount
	order.SkippedAmount = skip.NewSkippedAmount
	sub.Status = model.SubOrderStatusSkipped

	_, err = DecideRefund(order, sub, items, refundFor(map[int64]int{100: 3, 101: 2}))
	if !errors.Is(err, domainErrors.ErrStateConflict) {
		t.Fatalf("skip already credited these items; expected state conflict, got %v", err)
	}
	var conflict *domainErrors.StateConflictError
	if !errors.As(err, &conflict) || conflict.Status != "SKIPPED" {
		t.Fatalf("expected SKIPPED conflict detail, got %v", err)
	}
}

func TestDecideRefundCancelledAndRefundedDeliveries(t *testing.T) {
	for _, status := range []model.SubOrderStatus{model.SubOrderStatusCancelled, model.SubOrderStatusRefunded} {
		sub := acceptedSubOrder()
		sub.Status = status
		_, err := DecideRefund(activeOrder(), sub, twoItems(), refundFor(map[int64]int{100: 1}))
		if !errors.Is(err, domainErrors.ErrStateConflict) {
			t.Fatalf("%s: expected state conflict, got %v", status, err)
		}
	}
}

func TestDecideRefundMarksFullRefund(t *testing.T) {
	items := twoItems()

	d, err := DecideRefund(activeOrder(), acceptedSubOrder(), items, refundFor(map[int64]int{100: 3, 101: 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.FullyRefunded {
		t.Fatal("refunding every unit should mark the delivery fully refunded")
	}

	d, err = DecideRefund(activeOrder(), acceptedSubOrder(), items, refundFor(map[int64]int{100: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.FullyRefunded {
		t.Fatal("a partial refund must leave the delivery status untouched")
	}
}

func TestDecideRefundScopeMismatch(t *testing.T) {
	wrongOrder := refundFor(map[int64]int{100: 1})
	wrongOrder.OrderID = 99
	if _, err := DecideRefund(activeOrder(), acceptedSubOrder(), twoItems(), wrongOrder); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("order id mismatch should be not found, got %v", err)
	}

	wrongKind := refundFor(map[int64]int{100: 1})
	wrongKind.Kind = model.OrderKindOneTime
	if _, err := DecideRefund(activeOrder(), acceptedSubOrder(), twoItems(), wrongKind); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("order kind mismatch should be not found, got %v", err)
	}
}

func TestValidateCouponAddressLimit(t *testing.T) {
	coupon := &model.Coupon{AddressUsageLimit: 1}
	if err := ValidateCoupon(coupon, 0, ""); err != nil {
		t.Fatalf("first use should pass: %v", err)
	}
	if err := ValidateCoupon(coupon, 1, ""); !errors.Is(err, domainErrors.ErrCouponAddressLimit) {
		t.Fatalf("expected address limit error, got %v", err)
	}
}

func TestValidateCouponGlobalLimitAndPlan(t *testing.T) {
	if err := ValidateCoupon(&model.Coupon{MaxUsageLimit: 10, UsageCount: 10}, 0, ""); !errors.Is(err, domainErrors.ErrCouponExhausted) {
		t.Fatalf("expected exhausted coupon error, got %v", err)
	}
	if err := ValidateCoupon(&model.Coupon{PlanType: "weekly"}, 0, "monthly"); !errors.Is(err, domainErrors.ErrCouponPlanMismatch) {
		t.Fatalf("expected plan mismatch, got %v", err)
	}
}

func TestCouponDiscount(t *testing.T) {
	pct := &model.Coupon{DiscountPercentage: 15}
	if got := CouponDiscount(pct, dec("200")); !got.Equal(dec("30")) {
		t.Fatalf("expected 30, got %s", got)
	}

	amount := &model.Coupon{DiscountAmount: dec("50")}
	if got := CouponDiscount(amount, dec("200")); !got.Equal(dec("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
	if got := CouponDiscount(amount, dec("30")); !got.Equal(dec("30")) {
		t.Fatalf("amount coupon can only zero the total, got %s", got)
	}
}

func TestWalletDiscountTakesLesser(t *testing.T) {
	if got := WalletDiscount(dec("50"), dec("30")); !got.Equal(dec("30")) {
		t.Fatalf("expected 30, got %s", got)
	}
	if got := WalletDiscount(dec("20"), dec("30")); !got.Equal(dec("20")) {
		t.Fatalf("expected 20, got %s", got)
	}
	if got := WalletDiscount(decimal.Zero, dec("30")); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestBuildUpcomingOrder(t *testing.T) {
	customer := &model.Customer{ID: 7, Address: "12 Garden Lane"}
	// weekStart is a Monday
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	prefs := []model.DayPreference{
		{Weekday: time.Wednesday, SlotStart: "18:00", SlotEnd: "20:00", Items: []model.ItemDraft{
			{ItemID: "meal-a", Name: "Veg Thali", Price: dec("20"), Quantity: 3},
		}},
		{Weekday: time.Monday, SlotStart: "12:00", SlotEnd: "14:00", Items: []model.ItemDraft{
			{ItemID: "meal-b", Name: "Dal Bowl", Price: dec("10"), Quantity: 2},
		}},
	}

	draft := BuildUpcomingOrder(customer, prefs, weekStart, "PW-TEST", dec("5"), dec("100"))

	if len(draft.SubOrders) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(draft.SubOrders))
	}
	if !draft.SubOrders[0].DeliveryDate.Equal(weekStart.AddDate(0, 0, 2)) {
		t.Fatalf("wednesday delivery misplaced: %s", draft.SubOrders[0].DeliveryDate)
	}
	if !draft.SubOrders[1].DeliveryDate.Equal(weekStart) {
		t.Fatalf("monday delivery misplaced: %s", draft.SubOrders[1].DeliveryDate)
	}
	if !draft.FirstDeliveryDate.Equal(weekStart) {
		t.Fatalf("first delivery should be the earliest date, got %s", draft.FirstDeliveryDate)
	}
	// 80 worth of items is under the 100 free-delivery threshold
	if !draft.DeliveryFee.Equal(dec("5")) || !draft.TotalAmount.Equal(dec("85")) {
		t.Fatalf("expected fee 5 and total 85, got %s and %s", draft.DeliveryFee, draft.TotalAmount)
	}
	if draft.Status != model.OrderStatusUpcoming || draft.Kind != model.OrderKindSubscription {
		t.Fatalf("unexpected draft status/kind: %s/%s", draft.Status, draft.Kind)
	}
}

func TestBuildUpcomingOrderFreeDelivery(t *testing.T) {
	customer := &model.Customer{ID: 7}
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	prefs := []model.DayPreference{
		{Weekday: time.Monday, Items: []model.ItemDraft{{ItemID: "meal-a", Price: dec("60"), Quantity: 2}}},
	}

	draft := BuildUpcomingOrder(customer, prefs, weekStart, "PW-TEST", dec("5"), dec("100"))
	if !draft.DeliveryFee.IsZero() || !draft.TotalAmount.Equal(dec("120")) {
		t.Fatalf("expected free delivery at 120, got fee %s total %s", draft.DeliveryFee, draft.TotalAmount)
	}
}
