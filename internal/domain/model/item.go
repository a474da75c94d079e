package model

import "github.com/shopspring/decimal"

// OrderItem is one line item on exactly one delivery. Price is a snapshot
// taken at order time and never re-read from the live catalog.
// RefundQuantity is cumulative and never exceeds Quantity.
type OrderItem struct {
	ID             int64
	SubOrderID     int64
	ItemID         string
	Name           string
	Price          decimal.Decimal
	Quantity       int
	RefundQuantity int
}

// RefundableQuantity returns how many units can still be refunded.
func (i OrderItem) RefundableQuantity() int {
	return i.Quantity - i.RefundQuantity
}
