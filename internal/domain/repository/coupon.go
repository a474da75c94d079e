package repository

import (
	"context"

	"github.com/platewise/platewise/internal/domain/model"
)

// CouponRepository provides coupon lookup and post-payment usage accounting.
type CouponRepository interface {
	GetActiveByCode(ctx context.Context, code string) (*model.Coupon, error)
	AddressUsage(ctx context.Context, couponID int64, address string) (int, error)
	// Commit increments the global and per-address usage counters. Called
	// only after payment confirmation.
	Commit(ctx context.Context, couponID int64, address string) error
}
