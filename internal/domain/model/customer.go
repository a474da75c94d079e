package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a registered storefront customer. Wallet is the
// store-credit balance; it is mutated only through paired ledger entries.
type Customer struct {
	ID           int64
	Email        string
	PasswordHash string
	Wallet       decimal.Decimal
	ProviderRef  string
	Address      string
	CreatedAt    time.Time
}

// DayPreference is the customer's saved delivery plan for one weekday,
// replayed forward each billing cycle.
type DayPreference struct {
	Weekday   time.Weekday
	SlotStart string
	SlotEnd   string
	Items     []ItemDraft
}
