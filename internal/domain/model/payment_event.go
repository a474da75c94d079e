package model

import "github.com/shopspring/decimal"

// EventRecurringPaymentSucceeded is the provider event type that triggers a
// subscription rollover.
const EventRecurringPaymentSucceeded = "recurring_payment.success"

// PaymentEvent is a webhook event received from the payment provider.
type PaymentEvent struct {
	EventID        string
	Type           string
	CustomerRef    string
	Email          string
	SubscriptionID string
	InvoiceID      string
	InvoiceTotal   decimal.Decimal
	CouponCode     string
}
