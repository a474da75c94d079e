package model

import "github.com/shopspring/decimal"

// Coupon is a discount code. Exactly one of DiscountPercentage and
// DiscountAmount is non-zero. AddressUsageLimit caps redemptions per
// shipping address; MaxUsageLimit caps redemptions globally.
type Coupon struct {
	ID                 int64
	Code               string
	DiscountPercentage int
	DiscountAmount     decimal.Decimal
	MaxUsageLimit      int
	AddressUsageLimit  int
	UsageCount         int
	PlanType           string
	Active             bool
}
