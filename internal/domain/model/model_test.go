package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   OrderStatus
		value string
	}{
		{"upcoming", OrderStatusUpcoming, "UPCOMING"},
		{"active", OrderStatusActive, "ACTIVE"},
		{"completed", OrderStatusCompleted, "COMPLETED"},
		{"cancelled", OrderStatusCancelled, "CANCELLED"},
		{"on_hold", OrderStatusOnHold, "ON_HOLD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestSubOrderStatusValues(t *testing.T) {
	cases := []struct {
		status SubOrderStatus
		value  string
	}{
		{SubOrderStatusAccepted, "ACCEPTED"},
		{SubOrderStatusSkipped, "SKIPPED"},
		{SubOrderStatusPreparing, "PREPARING"},
		{SubOrderStatusOutForDelivery, "OUT_FOR_DELIVERY"},
		{SubOrderStatusDelivered, "DELIVERED"},
		{SubOrderStatusCancelled, "CANCELLED"},
		{SubOrderStatusRefunded, "REFUNDED"},
	}

	for _, tc := range cases {
		if string(tc.status) != tc.value {
			t.Fatalf("expected %s, got %s", tc.value, tc.status)
		}
	}
}

func TestTransactionSigned(t *testing.T) {
	credit := Transaction{Type: TransactionCredit, Amount: decimal.NewFromInt(80)}
	if !credit.Signed().Equal(decimal.NewFromInt(80)) {
		t.Fatalf("credit should be positive, got %s", credit.Signed())
	}

	debit := Transaction{Type: TransactionDebit, Amount: decimal.NewFromInt(30)}
	if !debit.Signed().Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("debit should be negative, got %s", debit.Signed())
	}
}

func TestOrderItemRefundableQuantity(t *testing.T) {
	item := OrderItem{Quantity: 3, RefundQuantity: 1}
	if got := item.RefundableQuantity(); got != 2 {
		t.Fatalf("expected 2 refundable units, got %d", got)
	}
}
