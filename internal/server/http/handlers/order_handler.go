package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/server/http/dto"
	"github.com/platewise/platewise/internal/usecase"
)

// OrderHandler serves orders and their delivery transitions.
type OrderHandler struct {
	orders     OrderFacade
	deliveries DeliveryFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders OrderFacade, deliveries DeliveryFacade) *OrderHandler {
	return &OrderHandler{orders: orders, deliveries: deliveries}
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	customerID := CurrentCustomerID(c)
	orders, err := h.orders.Orders(c.Request.Context(), customerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Skip handles POST /api/user/suborders/:id/skip.
func (h *OrderHandler) Skip(c *gin.Context) {
	h.transition(c, h.deliveries.SkipDelivery)
}

// Unskip handles POST /api/user/suborders/:id/unskip.
func (h *OrderHandler) Unskip(c *gin.Context) {
	h.transition(c, h.deliveries.UnskipDelivery)
}

type transitionFunc func(ctx context.Context, customerID, subOrderID int64, upcoming bool) (*usecase.DeliveryChange, error)

func (h *OrderHandler) transition(c *gin.Context, apply transitionFunc) {
	customerID := CurrentCustomerID(c)

	subOrderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || subOrderID <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.SkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	change, err := apply(c.Request.Context(), customerID, subOrderID, req.Upcoming)
	if err != nil {
		var conflict *domainErrors.StateConflictError
		switch {
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, dto.ConflictResponse{Status: conflict.Status, Reason: conflict.Reason})
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrBelowMinimumTotal):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrInsufficientWallet):
			c.Status(http.StatusPaymentRequired)
		case errors.Is(err, domainErrors.ErrExternalDependency):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.SkipResponse{
		TotalAmount:   change.TotalAmount.StringFixed(2),
		SkippedAmount: change.SkippedAmount.StringFixed(2),
		Moved:         change.Moved.StringFixed(2),
	})
}

func toOrderResponse(o usecase.OrderWithDeliveries) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:                o.Order.ID,
		Code:              o.Order.Code,
		Kind:              string(o.Order.Kind),
		Status:            string(o.Order.Status),
		TotalAmount:       o.Order.TotalAmount.StringFixed(2),
		SkippedAmount:     o.Order.SkippedAmount.StringFixed(2),
		DeliveryFee:       o.Order.DeliveryFee.StringFixed(2),
		FirstDeliveryDate: o.Order.FirstDeliveryDate,
		CreatedAt:         o.Order.CreatedAt,
	}
	for _, d := range o.Deliveries {
		delivery := dto.DeliveryResponse{
			ID:           d.SubOrder.ID,
			Status:       string(d.SubOrder.Status),
			DeliveryDate: d.SubOrder.DeliveryDate,
			SlotStart:    d.SubOrder.SlotStart,
			SlotEnd:      d.SubOrder.SlotEnd,
			Items:        make([]dto.OrderItemResponse, 0, len(d.Items)),
		}
		for _, item := range d.Items {
			delivery.Items = append(delivery.Items, dto.OrderItemResponse{
				ID:             item.ID,
				ItemID:         item.ItemID,
				Name:           item.Name,
				Price:          item.Price.StringFixed(2),
				Quantity:       item.Quantity,
				RefundQuantity: item.RefundQuantity,
			})
		}
		resp.Deliveries = append(resp.Deliveries, delivery)
	}
	return resp
}
