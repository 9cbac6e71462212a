package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Amanc77/Datamart-app/internal/infra/httpclient"
)

const defaultBaseURL = "https://api.razorpay.com"

type Config struct {
	KeyID     string
	KeySecret string
	Timeout   time.Duration

	// BaseURL overrides the live API endpoint, used by tests.
	BaseURL string
}

// Client is a minimal order-creation client for the Razorpay Orders API.
// It is constructed once and injected; there is no package-level instance.
type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func NewClient(cfg Config) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay keys are missing")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    baseURL,
		httpClient: httpclient.New(cfg.Timeout),
	}, nil
}

func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder opens a gateway order for the given minor-unit amount.
func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("razorpay client is not initialized")
	}
	if amountMinor <= 0 {
		return "", fmt.Errorf("invalid order amount: %d", amountMinor)
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   amountMinor,
		"currency": strings.ToUpper(strings.TrimSpace(currency)),
		"receipt":  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post gateway order: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected gateway order status: %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if strings.TrimSpace(order.ID) == "" {
		return "", fmt.Errorf("gateway order response has no id")
	}

	return order.ID, nil
}
