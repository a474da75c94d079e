package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType marks the direction of a wallet mutation.
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// Transaction is one append-only wallet ledger entry. Every wallet mutation
// produces exactly one Transaction in the same database transaction.
type Transaction struct {
	ID            int64
	TransactionID string
	CustomerID    int64
	Type          TransactionType
	Amount        decimal.Decimal
	Description   string
	CreatedAt     time.Time
}

// Signed returns the amount with the sign implied by the entry type.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
