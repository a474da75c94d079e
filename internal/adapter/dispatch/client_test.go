package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/platewise/platewise/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateDelivery(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var received createRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/deliveries" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(createResponse{DeliveryID: "disp-42"})
		}))
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL, testLogger())
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		id, err := client.CreateDelivery(context.Background(), model.DispatchRequest{
			OrderCode:    "PW-1001",
			SubOrderID:   11,
			Address:      "12 Main St",
			DeliveryDate: time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
			SlotStart:    "10:00",
			SlotEnd:      "12:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "disp-42" {
			t.Fatalf("expected disp-42, got %q", id)
		}
		if received.OrderCode != "PW-1001" || received.SubOrderID != 11 {
			t.Fatalf("unexpected payload: %+v", received)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL, testLogger())
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := client.CreateDelivery(context.Background(), model.DispatchRequest{}); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("empty delivery id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(createResponse{})
		}))
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL, testLogger())
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if _, err := client.CreateDelivery(context.Background(), model.DispatchRequest{}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestCancelDelivery(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "ok", statusCode: http.StatusNoContent},
		{name: "already gone", statusCode: http.StatusNotFound},
		{name: "provider failure", statusCode: http.StatusBadGateway, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete || r.URL.Path != "/api/deliveries/disp-42" {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			client, err := NewHTTPClient(srv.URL, testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			err = client.CancelDelivery(context.Background(), "disp-42")
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
