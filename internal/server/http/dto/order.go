package dto

import "time"

// OrderItemResponse is one line item on a delivery.
type OrderItemResponse struct {
	ID             int64  `json:"id"`
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	Quantity       int    `json:"quantity"`
	RefundQuantity int    `json:"refund_quantity,omitempty"`
}

// DeliveryResponse is one suborder with its items.
type DeliveryResponse struct {
	ID           int64               `json:"id"`
	Status       string              `json:"status"`
	DeliveryDate time.Time           `json:"delivery_date"`
	SlotStart    string              `json:"slot_start,omitempty"`
	SlotEnd      string              `json:"slot_end,omitempty"`
	Items        []OrderItemResponse `json:"items"`
}

// OrderResponse is an order with its per-delivery breakdown.
type OrderResponse struct {
	ID                int64              `json:"id"`
	Code              string             `json:"code"`
	Kind              string             `json:"kind"`
	Status            string             `json:"status"`
	TotalAmount       string             `json:"total_amount"`
	SkippedAmount     string             `json:"skipped_amount"`
	DeliveryFee       string             `json:"delivery_fee"`
	FirstDeliveryDate time.Time          `json:"first_delivery_date"`
	CreatedAt         time.Time          `json:"created_at"`
	Deliveries        []DeliveryResponse `json:"deliveries"`
}

// SkipRequest selects which order bucket the delivery belongs to.
type SkipRequest struct {
	Upcoming bool `json:"upcoming"`
}

// SkipResponse reports the order totals after a skip or unskip.
type SkipResponse struct {
	TotalAmount   string `json:"total_amount"`
	SkippedAmount string `json:"skipped_amount"`
	Moved         string `json:"moved"`
}

// ConflictResponse carries the user-facing reason of a state conflict.
type ConflictResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
