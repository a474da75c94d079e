package model

import "time"

// SubOrderStatus describes one delivery day's state machine.
type SubOrderStatus string

const (
	SubOrderStatusAccepted       SubOrderStatus = "ACCEPTED"
	SubOrderStatusSkipped        SubOrderStatus = "SKIPPED"
	SubOrderStatusPreparing      SubOrderStatus = "PREPARING"
	SubOrderStatusOutForDelivery SubOrderStatus = "OUT_FOR_DELIVERY"
	SubOrderStatusDelivered      SubOrderStatus = "DELIVERED"
	SubOrderStatusCancelled      SubOrderStatus = "CANCELLED"
	SubOrderStatusRefunded       SubOrderStatus = "REFUNDED"
)

// SubOrder is one scheduled delivery day within an Order. DispatchID points
// at the live delivery record with the routing provider; nil when no
// delivery has been dispatched (upcoming cycles, skipped days).
type SubOrder struct {
	ID           int64
	OrderID      int64
	Status       SubOrderStatus
	DeliveryDate time.Time
	SlotStart    string
	SlotEnd      string
	DispatchID   *string
	UpdatedAt    time.Time
}
