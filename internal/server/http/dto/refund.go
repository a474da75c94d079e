package dto

// RefundRequest is the admin request to credit item quantities back.
// Items maps order item ids to the quantity being refunded.
type RefundRequest struct {
	OrderID    int64         `json:"order_id"`
	DeliveryID int64         `json:"delivery_id"`
	OrderType  string        `json:"order_type"`
	Items      map[int64]int `json:"items"`
}

// RefundResponse reports the credited total.
type RefundResponse struct {
	Credited string `json:"credited"`
}
