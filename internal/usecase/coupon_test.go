package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/model"
	testhelpers "github.com/platewise/platewise/internal/test"
	. "github.com/platewise/platewise/internal/usecase"
)

func TestCouponUseCasePreviewPercentage(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{Coupons: map[string]*model.Coupon{
		"WELCOME10": {ID: 1, Code: "WELCOME10", DiscountPercentage: 10, Active: true},
	}}
	uc := NewCouponUseCase(coupons)

	discount, err := uc.Preview(context.Background(), "WELCOME10", "home", "weekly", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected discount %s", discount)
	}
}

func TestCouponUseCasePreviewFixedAmountCapped(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{Coupons: map[string]*model.Coupon{
		"FLAT50": {ID: 2, Code: "FLAT50", DiscountAmount: decimal.NewFromInt(50), Active: true},
	}}
	uc := NewCouponUseCase(coupons)

	discount, err := uc.Preview(context.Background(), "FLAT50", "home", "", decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("fixed discount must not exceed the total, got %s", discount)
	}
}

func TestCouponUseCasePreviewBlankAndUnknown(t *testing.T) {
	uc := NewCouponUseCase(&testhelpers.CouponRepositoryStub{})

	for _, code := range []string{"", "  ", "MISSING"} {
		discount, err := uc.Preview(context.Background(), code, "home", "", decimal.NewFromInt(100))
		if err != nil {
			t.Fatalf("code %q: unexpected error: %v", code, err)
		}
		if !discount.IsZero() {
			t.Fatalf("code %q: expected zero discount, got %s", code, discount)
		}
	}
}

func TestCouponUseCasePreviewAddressLimit(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{
		Coupons: map[string]*model.Coupon{
			"ONCE": {ID: 3, Code: "ONCE", DiscountPercentage: 5, AddressUsageLimit: 1, Active: true},
		},
		Usage: map[string]int{"home": 1},
	}
	uc := NewCouponUseCase(coupons)

	if _, err := uc.Preview(context.Background(), "ONCE", "home", "", decimal.NewFromInt(100)); !errors.Is(err, domainErrors.ErrCouponAddressLimit) {
		t.Fatalf("expected address limit error, got %v", err)
	}

	discount, err := uc.Preview(context.Background(), "ONCE", "office", "", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("fresh address should pass: %v", err)
	}
	if !discount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected discount %s", discount)
	}
}

func TestCouponUseCasePreviewExhausted(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{Coupons: map[string]*model.Coupon{
		"GONE": {ID: 4, Code: "GONE", DiscountPercentage: 5, MaxUsageLimit: 10, UsageCount: 10, Active: true},
	}}
	uc := NewCouponUseCase(coupons)
	if _, err := uc.Preview(context.Background(), "GONE", "home", "", decimal.NewFromInt(100)); !errors.Is(err, domainErrors.ErrCouponExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
}

func TestCouponUseCasePreviewPlanMismatch(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{Coupons: map[string]*model.Coupon{
		"WEEKLY": {ID: 5, Code: "WEEKLY", DiscountPercentage: 5, PlanType: "weekly", Active: true},
	}}
	uc := NewCouponUseCase(coupons)

	if _, err := uc.Preview(context.Background(), "WEEKLY", "home", "monthly", decimal.NewFromInt(100)); !errors.Is(err, domainErrors.ErrCouponPlanMismatch) {
		t.Fatalf("expected plan mismatch error, got %v", err)
	}
	if _, err := uc.Preview(context.Background(), "WEEKLY", "home", "weekly", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("matching plan should pass: %v", err)
	}
}

func TestCouponUseCaseCommit(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{Coupons: map[string]*model.Coupon{
		"WELCOME10": {ID: 1, Code: "WELCOME10", DiscountPercentage: 10, Active: true},
	}}
	uc := NewCouponUseCase(coupons)

	if err := uc.Commit(context.Background(), "WELCOME10", "home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coupons.Commits) != 1 || coupons.Commits[0].CouponID != 1 || coupons.Commits[0].Address != "home" {
		t.Fatalf("unexpected commits %+v", coupons.Commits)
	}
}

func TestCouponUseCaseCommitIgnoresUnknownCode(t *testing.T) {
	coupons := &testhelpers.CouponRepositoryStub{}
	uc := NewCouponUseCase(coupons)

	if err := uc.Commit(context.Background(), "RETIRED", "home"); err != nil {
		t.Fatalf("unknown code must not fail the payment flow: %v", err)
	}
	if err := uc.Commit(context.Background(), "", "home"); err != nil {
		t.Fatalf("blank code must be ignored: %v", err)
	}
	if len(coupons.Commits) != 0 {
		t.Fatalf("expected no commits, got %+v", coupons.Commits)
	}
}
