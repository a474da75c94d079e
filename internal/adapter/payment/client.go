package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/shopspring/decimal"
)

// Client exposes operations against the billing provider.
type Client interface {
	CreateCoupon(ctx context.Context, subscriptionID string, amount decimal.Decimal) (string, error)
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// couponRequest asks the provider for a single-use fixed discount on the
// subscription's next invoice.
type couponRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Amount         string `json:"amount"`
	ApplyOnce      bool   `json:"apply_once"`
}

type couponResponse struct {
	CouponID string `json:"coupon_id"`
}

// NewHTTPClient creates HTTP billing client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreateCoupon registers a one-off discount for the next renewal invoice.
func (c *HTTPClient) CreateCoupon(ctx context.Context, subscriptionID string, amount decimal.Decimal) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/coupons")

	payload, err := json.Marshal(couponRequest{
		SubscriptionID: subscriptionID,
		Amount:         amount.StringFixed(2),
		ApplyOnce:      true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("create coupon failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("payment error: %s", resp.Status)
	}

	var data couponResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.CouponID == "" {
		return "", fmt.Errorf("payment returned empty coupon id")
	}
	return data.CouponID, nil
}
