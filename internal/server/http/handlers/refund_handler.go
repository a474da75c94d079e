package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/server/http/dto"
)

// RefundHandler serves the admin refund endpoint.
type RefundHandler struct {
	facade RefundFacade
}

// NewRefundHandler constructs RefundHandler.
func NewRefundHandler(facade RefundFacade) *RefundHandler {
	return &RefundHandler{facade: facade}
}

// Refund handles POST /api/admin/refunds.
func (h *RefundHandler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.OrderID <= 0 || req.DeliveryID <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}
	kind := model.OrderKind(req.OrderType)
	if kind != model.OrderKindSubscription && kind != model.OrderKindOneTime {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("order type %q is not supported", req.OrderType)})
		return
	}

	credited, err := h.facade.RefundItems(c.Request.Context(), req.OrderID, req.DeliveryID, kind, req.Items)
	if err != nil {
		var conflict *domainErrors.StateConflictError
		switch {
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, dto.ConflictResponse{Status: conflict.Status, Reason: conflict.Reason})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrNoRefundChanges):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrInvalidAmount),
			errors.Is(err, domainErrors.ErrNotSupported):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.RefundResponse{Credited: credited.StringFixed(2)})
}
