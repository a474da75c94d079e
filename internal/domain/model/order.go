package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes subscription cycle lifecycle.
type OrderStatus string

const (
	OrderStatusUpcoming  OrderStatus = "UPCOMING"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusOnHold    OrderStatus = "ON_HOLD"
)

// OrderKind distinguishes recurring subscriptions from one-time purchases.
type OrderKind string

const (
	OrderKindSubscription OrderKind = "subscription"
	OrderKindOneTime      OrderKind = "one_time"
)

// Order is one subscription cycle or one-time purchase. CustomerID is zero
// for guest checkouts. TotalAmount plus SkippedAmount always equals the
// committed total at order creation.
type Order struct {
	ID                int64
	CustomerID        int64
	Code              string
	Kind              OrderKind
	Status            OrderStatus
	TotalAmount       decimal.Decimal
	SkippedAmount     decimal.Decimal
	PaidAmount        decimal.Decimal
	DeliveryFee       decimal.Decimal
	InvoiceID         string
	ShippingAddress   string
	FirstDeliveryDate time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderDraft describes a not-yet-persisted upcoming order synthesized at
// rollover from the customer's saved preferences.
type OrderDraft struct {
	CustomerID        int64
	Code              string
	Kind              OrderKind
	Status            OrderStatus
	TotalAmount       decimal.Decimal
	DeliveryFee       decimal.Decimal
	ShippingAddress   string
	FirstDeliveryDate time.Time
	SubOrders         []SubOrderDraft
}

// SubOrderDraft is one planned delivery day inside an OrderDraft.
type SubOrderDraft struct {
	DeliveryDate time.Time
	SlotStart    string
	SlotEnd      string
	Items        []ItemDraft
}

// ItemDraft is a line item copied from customer preferences.
type ItemDraft struct {
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Quantity int
}
