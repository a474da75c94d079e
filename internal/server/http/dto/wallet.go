package dto

import "time"

// WalletResponse reports the store-credit balance.
type WalletResponse struct {
	Balance string `json:"balance"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
