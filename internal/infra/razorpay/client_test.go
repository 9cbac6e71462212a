package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_test_secret" {
			t.Errorf("unexpected basic auth: %q %q %v", user, pass, ok)
		}

		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode order request: %v", err)
		}
		if req.Amount != 42000 || req.Currency != "INR" {
			t.Errorf("unexpected order request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_test_1",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer ts.Close()

	client, err := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   ts.URL,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	orderID, err := client.CreateOrder(context.Background(), 42000, "inr", "order_p1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if orderID != "order_test_1" {
		t.Fatalf("unexpected order id: %s", orderID)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":"BAD_REQUEST_ERROR"}}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	client, err := NewClient(Config{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   ts.URL,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	if _, err := client.CreateOrder(context.Background(), 100, "INR", "order_p2"); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}

func TestNewClientRequiresKeys(t *testing.T) {
	if _, err := NewClient(Config{KeyID: "only-id"}); err == nil {
		t.Fatalf("expected error for missing secret")
	}
	if _, err := NewClient(Config{KeySecret: "only-secret"}); err == nil {
		t.Fatalf("expected error for missing key id")
	}
}
