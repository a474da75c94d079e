package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

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

func TestSend(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var received sendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/messages" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL, testLogger())
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		err = client.Send(context.Background(), model.Notification{
			CustomerID: 7,
			Channel:    model.ChannelEmail,
			Template:   "delivery_skipped",
			Payload:    map[string]string{"credit": "80.00"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if received.CustomerID != 7 || received.Template != "delivery_skipped" {
			t.Fatalf("unexpected payload: %+v", received)
		}
	})

	t.Run("gateway error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client, err := NewHTTPClient(srv.URL, testLogger())
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if err := client.Send(context.Background(), model.Notification{}); err == nil {
			t.Fatal("expected error")
		}
	})
}
