package dto

// CouponPreviewRequest asks what a code would discount on a given total.
type CouponPreviewRequest struct {
	Code     string `json:"code"`
	Total    string `json:"total"`
	PlanType string `json:"plan_type,omitempty"`
	Address  string `json:"address,omitempty"`
}

// CouponPreviewResponse reports the computed discount.
type CouponPreviewResponse struct {
	Discount string `json:"discount"`
	Payable  string `json:"payable"`
}
