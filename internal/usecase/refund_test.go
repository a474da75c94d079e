package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/lifecycle"
	"github.com/platewise/platewise/internal/domain/model"
	testhelpers "github.com/platewise/platewise/internal/test"
	. "github.com/platewise/platewise/internal/usecase"
)

func TestRefundUseCaseRefund(t *testing.T) {
	subs := &testhelpers.SubOrderRepositoryStub{
		ApplyRefundFn: func(ctx context.Context, req lifecycle.RefundRequest) (*lifecycle.RefundDecision, error) {
			if req.OrderID != 1 || req.SubOrderID != 10 || req.Kind != model.OrderKindSubscription {
				t.Fatalf("unexpected scope %+v", req)
			}
			if req.Items[31] != 2 {
				t.Fatalf("unexpected request %+v", req.Items)
			}
			return &lifecycle.RefundDecision{
				SubOrderID: req.SubOrderID,
				Credits:    []lifecycle.ItemCredit{{OrderItemID: 31, Quantity: 2, Amount: decimal.NewFromInt(40)}},
				Total:      decimal.NewFromInt(40),
			}, nil
		},
	}

	uc := NewRefundUseCase(subs)
	decision, err := uc.Refund(context.Background(), lifecycle.RefundRequest{
		OrderID: 1, SubOrderID: 10, Kind: model.OrderKindSubscription, Items: map[int64]int{31: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Total.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected refund total %s", decision.Total)
	}
}

func TestRefundUseCaseNoChanges(t *testing.T) {
	subs := &testhelpers.SubOrderRepositoryStub{
		ApplyRefundFn: func(context.Context, lifecycle.RefundRequest) (*lifecycle.RefundDecision, error) {
			return nil, domainErrors.ErrNoRefundChanges
		},
	}
	uc := NewRefundUseCase(subs)
	req := lifecycle.RefundRequest{OrderID: 1, SubOrderID: 10, Kind: model.OrderKindSubscription}
	if _, err := uc.Refund(context.Background(), req); !errors.Is(err, domainErrors.ErrNoRefundChanges) {
		t.Fatalf("expected no-changes error, got %v", err)
	}
}
