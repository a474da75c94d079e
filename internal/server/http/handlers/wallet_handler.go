package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/platewise/internal/server/http/dto"
)

// WalletHandler serves wallet balance and ledger endpoints.
type WalletHandler struct {
	facade WalletFacade
}

// NewWalletHandler constructs WalletHandler.
func NewWalletHandler(facade WalletFacade) *WalletHandler {
	return &WalletHandler{facade: facade}
}

// Balance handles GET /api/user/wallet.
func (h *WalletHandler) Balance(c *gin.Context) {
	customerID := CurrentCustomerID(c)
	balance, err := h.facade.WalletBalance(c.Request.Context(), customerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.WalletResponse{Balance: balance.StringFixed(2)})
}

// History handles GET /api/user/wallet/history.
func (h *WalletHandler) History(c *gin.Context) {
	customerID := CurrentCustomerID(c)
	transactions, err := h.facade.WalletHistory(c.Request.Context(), customerID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(transactions) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, dto.TransactionResponse{
			TransactionID: t.TransactionID,
			Type:          string(t.Type),
			Amount:        t.Amount.StringFixed(2),
			Description:   t.Description,
			CreatedAt:     t.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
