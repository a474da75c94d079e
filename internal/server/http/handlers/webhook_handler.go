package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/platewise/platewise/internal/domain/errors"
	"github.com/platewise/platewise/internal/domain/model"
	"github.com/platewise/platewise/internal/server/http/dto"
)

// WebhookHandler receives payment provider events.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Payment handles POST /api/webhooks/payment.
func (h *WebhookHandler) Payment(c *gin.Context) {
	var req dto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.EventID == "" || req.Type == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	total := decimal.Zero
	if req.InvoiceTotal != "" {
		parsed, err := decimal.NewFromString(req.InvoiceTotal)
		if err != nil || parsed.IsNegative() {
			c.Status(http.StatusBadRequest)
			return
		}
		total = parsed
	}

	err := h.facade.ProcessPaymentEvent(c.Request.Context(), model.PaymentEvent{
		EventID:        req.EventID,
		Type:           req.Type,
		CustomerRef:    req.CustomerRef,
		Email:          req.Email,
		SubscriptionID: req.SubscriptionID,
		InvoiceID:      req.InvoiceID,
		InvoiceTotal:   total,
		CouponCode:     req.CouponCode,
	})
	if err != nil {
		switch {
		// Redelivered events are acknowledged so the provider stops retrying.
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusOK)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}
