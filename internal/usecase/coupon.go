package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/repository"
)

// CouponUseCase validates discount codes and applies post-payment accounting.
type CouponUseCase struct {
	coupons repository.CouponRepository
}

// NewCouponUseCase constructs CouponUseCase.
func NewCouponUseCase(coupons repository.CouponRepository) *CouponUseCase {
	return &CouponUseCase{coupons: coupons}
}

// Preview computes the discount a code would give on the given total. A
// blank or unknown code yields a zero discount rather than an error; limit
// and plan violations surface as typed errors.
func (u *CouponUseCase) Preview(ctx context.Context, code, address, planType string, total decimal.Decimal) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, nil
	}

	coupon, err := u.coupons.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	usage, err := u.coupons.AddressUsage(ctx, coupon.ID, address)
	if err != nil {
		return decimal.Zero, err
	}

	if err := lifecycle.ValidateCoupon(coupon, usage, planType); err != nil {
		return decimal.Zero, err
	}

	return lifecycle.CouponDiscount(coupon, total), nil
}

// Commit records a redemption after payment confirmation. Unknown codes are
// ignored so a code retired mid-checkout does not break the payment flow.
func (u *CouponUseCase) Commit(ctx context.Context, code, address string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	coupon, err := u.coupons.GetActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return u.coupons.Commit(ctx, coupon.ID, address)
}
