package dto

import (
	"encoding/json"
	"time"
)

type CheckoutRequest struct {
	DatasetType string          `json:"datasetType"`
	Filters     json.RawMessage `json:"filters"`
	RowCount    int             `json:"rowCount"`
}

type CheckoutPrefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CheckoutResponse struct {
	Success     bool            `json:"success"`
	Free        bool            `json:"free"`
	PurchaseID  string          `json:"purchase_id"`
	OrderID     string          `json:"order_id,omitempty"`
	Amount      int64           `json:"amount,omitempty"`
	AmountUSD   float64         `json:"amount_usd"`
	Currency    string          `json:"currency"`
	KeyID       string          `json:"key_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Status      string          `json:"status"`
}

type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyResponse struct {
	Success          bool   `json:"success"`
	PurchaseID       string `json:"purchase_id"`
	Status           string `json:"status"`
	AlreadyCompleted bool   `json:"already_completed,omitempty"`
}

type WebhookResponse struct {
	Success bool `json:"success"`
}

type PurchaseItem struct {
	ID          string    `json:"id"`
	DatasetType string    `json:"datasetType"`
	RowCount    int       `json:"rowCount"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PurchaseListResponse struct {
	Success   bool           `json:"success"`
	Purchases []PurchaseItem `json:"purchases"`
}
