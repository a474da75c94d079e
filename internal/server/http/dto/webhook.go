package dto

// PaymentWebhookRequest mirrors the payment provider's event payload.
type PaymentWebhookRequest struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	CustomerRef    string `json:"customer_ref,omitempty"`
	Email          string `json:"email,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	InvoiceID      string `json:"invoice_id,omitempty"`
	InvoiceTotal   string `json:"invoice_total,omitempty"`
	CouponCode     string `json:"coupon_code,omitempty"`
}
