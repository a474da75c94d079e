package dispatch

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

	"github.com/platewise/platewise/internal/domain/model"
)

// Client exposes operations against the delivery provider.
type Client interface {
	CreateDelivery(ctx context.Context, req model.DispatchRequest) (string, error)
	CancelDelivery(ctx context.Context, dispatchID string) error
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type createRequest struct {
	OrderCode    string `json:"order_code"`
	SubOrderID   int64  `json:"suborder_id"`
	Address      string `json:"address"`
	DeliveryDate string `json:"delivery_date"`
	SlotStart    string `json:"slot_start,omitempty"`
	SlotEnd      string `json:"slot_end,omitempty"`
}

type createResponse struct {
	DeliveryID string `json:"delivery_id"`
}

// NewHTTPClient creates HTTP dispatch client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse dispatch url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("dispatch url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreateDelivery books a delivery and returns the provider id.
func (c *HTTPClient) CreateDelivery(ctx context.Context, dr model.DispatchRequest) (string, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/deliveries")

	payload, err := json.Marshal(createRequest{
		OrderCode:    dr.OrderCode,
		SubOrderID:   dr.SubOrderID,
		Address:      dr.Address,
		DeliveryDate: dr.DeliveryDate.Format(time.RFC3339),
		SlotStart:    dr.SlotStart,
		SlotEnd:      dr.SlotEnd,
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
		c.logger.Error("create delivery failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return "", fmt.Errorf("dispatch error: %s", resp.Status)
	}

	var data createResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.DeliveryID == "" {
		return "", fmt.Errorf("dispatch returned empty delivery id")
	}
	return data.DeliveryID, nil
}

// CancelDelivery removes a previously booked delivery. A delivery the
// provider no longer knows counts as cancelled.
func (c *HTTPClient) CancelDelivery(ctx context.Context, dispatchID string) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/deliveries/", dispatchID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("cancel delivery failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("dispatch error: %s", resp.Status)
	}
}
