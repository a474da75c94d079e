package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/server/http/dto"
)

// CouponHandler previews discount codes against a checkout total.
type CouponHandler struct {
	facade CouponFacade
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(facade CouponFacade) *CouponHandler {
	return &CouponHandler{facade: facade}
}

// Preview handles POST /api/user/coupons/preview.
func (h *CouponHandler) Preview(c *gin.Context) {
	var req dto.CouponPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil || total.IsNegative() {
		c.Status(http.StatusBadRequest)
		return
	}

	discount, err := h.facade.PreviewCoupon(c.Request.Context(), req.Code, req.Address, req.PlanType, total)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrCouponAddressLimit),
			errors.Is(err, domainErrors.ErrCouponExhausted),
			errors.Is(err, domainErrors.ErrCouponPlanMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.CouponPreviewResponse{
		Discount: discount.StringFixed(2),
		Payable:  total.Sub(discount).StringFixed(2),
	})
}
