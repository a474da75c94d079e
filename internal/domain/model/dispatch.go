package model

import "time"

// DispatchRequest carries the delivery details sent to the routing provider.
type DispatchRequest struct {
	OrderCode    string
	SubOrderID   int64
	Address      string
	DeliveryDate time.Time
	SlotStart    string
	SlotEnd      string
}
