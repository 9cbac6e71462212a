package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Amanc77/Datamart-app/internal/domain/datasets"
	"github.com/Amanc77/Datamart-app/internal/infra/razorpay"
	pgrepo "github.com/Amanc77/Datamart-app/internal/repo/postgres"
	pricingsvc "github.com/Amanc77/Datamart-app/internal/services/pricing"
)

const (
	statusPending   = "pending"
	statusCompleted = "completed"

	// freePaymentRef marks zero-amount purchases that never touch the
	// gateway; the order-id lookup space is disjoint from gateway ids.
	freePaymentRef = "FREE"

	eventPaymentCaptured = "payment.captured"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

type PurchaseStore interface {
	Create(ctx context.Context, userID int64, datasetType string, filters json.RawMessage, rowCount int, amount float64, status string, paymentRef *string) (pgrepo.PurchaseRecord, error)
	SetOrderRef(ctx context.Context, purchaseID, orderID string) error
	FindByOrderID(ctx context.Context, orderID string) (pgrepo.PurchaseRecord, error)
	CompleteByOrderID(ctx context.Context, orderID, paymentID string, capturedAmount *float64) (pgrepo.PurchaseRecord, bool, error)
}

type EntitlementStore interface {
	AttachPurchase(ctx context.Context, userID int64, purchaseID string) error
}

type UserStore interface {
	FindByID(ctx context.Context, userID int64) (pgrepo.UserRecord, error)
}

type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	KeyID() string
}

type Pricer interface {
	QuoteRows(rowCount int) (pricingsvc.Quote, error)
}

type Service struct {
	purchases    PurchaseStore
	entitlements EntitlementStore
	users        UserStore
	gateway      Gateway
	pricer       Pricer
	cfg          Config
	now          func() time.Time
}

type Dependencies struct {
	Purchases    PurchaseStore
	Entitlements EntitlementStore
	Users        UserStore
	Gateway      Gateway
	Pricer       Pricer
}

type Config struct {
	Currency      string
	DisplayName   string
	KeySecret     string
	WebhookSecret string
	FXRate        float64
}

type CheckoutInput struct {
	DatasetType string
	Filters     json.RawMessage
	RowCount    int
}

type CheckoutResult struct {
	PurchaseID   string
	OrderID      string
	AmountMinor  int64
	AmountUSD    float64
	Currency     string
	KeyID        string
	Name         string
	Description  string
	PrefillName  string
	PrefillEmail string
	Status       string
	Free         bool
}

type WebhookResult struct {
	PurchaseID       string
	UserID           int64
	Status           string
	AlreadyCompleted bool
	Skipped          bool
}

type VerifyResult struct {
	PurchaseID       string
	Status           string
	AlreadyCompleted bool
}

// webhookEvent is the subset of the gateway's webhook envelope the
// marketplace acts on.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.FXRate <= 0 {
		cfg.FXRate = 1
	}

	return &Service{
		purchases:    deps.Purchases,
		entitlements: deps.Entitlements,
		users:        deps.Users,
		gateway:      deps.Gateway,
		pricer:       deps.Pricer,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Checkout prices a dataset request and opens a purchase. Zero-amount
// purchases complete and attach immediately; paid ones are recorded pending
// and handed a gateway order for the client to pay.
func (s *Service) Checkout(ctx context.Context, userID int64, in CheckoutInput) (CheckoutResult, error) {
	if userID <= 0 {
		return CheckoutResult{}, ErrValidation
	}
	if s.purchases == nil || s.entitlements == nil || s.pricer == nil {
		return CheckoutResult{}, fmt.Errorf("payments dependencies are not configured")
	}

	datasetType, ok := datasets.ParseType(in.DatasetType)
	if !ok {
		return CheckoutResult{}, ErrValidation
	}

	filter, err := datasets.ParseFilter(datasetType, in.Filters)
	if err != nil {
		return CheckoutResult{}, ErrValidation
	}
	storedFilters, err := filter.Encode()
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("encode purchase filters: %w", err)
	}

	quote, err := s.pricer.QuoteRows(in.RowCount)
	if err != nil {
		if errors.Is(err, pricingsvc.ErrValidation) {
			return CheckoutResult{}, ErrValidation
		}
		return CheckoutResult{}, fmt.Errorf("quote purchase: %w", err)
	}

	if quote.Free {
		return s.checkoutFree(ctx, userID, datasetType, storedFilters, quote)
	}
	return s.checkoutPaid(ctx, userID, datasetType, storedFilters, quote)
}

func (s *Service) checkoutFree(
	ctx context.Context,
	userID int64,
	datasetType datasets.Type,
	storedFilters json.RawMessage,
	quote pricingsvc.Quote,
) (CheckoutResult, error) {
	ref := freePaymentRef
	record, err := s.purchases.Create(ctx, userID, string(datasetType), storedFilters, quote.RowCount, quote.AmountUSD, statusCompleted, &ref)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create free purchase: %w", err)
	}

	if err := s.entitlements.AttachPurchase(ctx, userID, record.ID); err != nil {
		return CheckoutResult{}, fmt.Errorf("attach free purchase: %w", err)
	}

	return CheckoutResult{
		PurchaseID: record.ID,
		AmountUSD:  quote.AmountUSD,
		Currency:   s.cfg.Currency,
		Status:     record.Status,
		Free:       true,
	}, nil
}

func (s *Service) checkoutPaid(
	ctx context.Context,
	userID int64,
	datasetType datasets.Type,
	storedFilters json.RawMessage,
	quote pricingsvc.Quote,
) (CheckoutResult, error) {
	if s.gateway == nil {
		return CheckoutResult{}, ErrGatewayUnavailable
	}

	record, err := s.purchases.Create(ctx, userID, string(datasetType), storedFilters, quote.RowCount, quote.AmountUSD, statusPending, nil)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("create pending purchase: %w", err)
	}

	orderID, err := s.gateway.CreateOrder(ctx, quote.AmountMinor, s.cfg.Currency, "order_"+record.ID)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := s.purchases.SetOrderRef(ctx, record.ID, orderID); err != nil {
		return CheckoutResult{}, fmt.Errorf("bind order to purchase: %w", err)
	}

	prefillName, prefillEmail := s.prefillFor(ctx, userID)

	return CheckoutResult{
		PurchaseID:   record.ID,
		OrderID:      orderID,
		AmountMinor:  quote.AmountMinor,
		AmountUSD:    quote.AmountUSD,
		Currency:     s.cfg.Currency,
		KeyID:        s.gateway.KeyID(),
		Name:         s.cfg.DisplayName,
		Description:  fmt.Sprintf("%d rows of %s data", quote.RowCount, datasetType),
		PrefillName:  prefillName,
		PrefillEmail: prefillEmail,
		Status:       record.Status,
	}, nil
}

// ConfirmWebhook handles a gateway webhook delivery. The signature covers
// the raw request body, so callers must pass the bytes exactly as received.
// Deliveries for unknown orders are reported as skipped rather than failed:
// the gateway account can carry traffic for other applications.
func (s *Service) ConfirmWebhook(ctx context.Context, rawBody []byte, signature string) (WebhookResult, error) {
	if s.purchases == nil {
		return WebhookResult{}, fmt.Errorf("payments dependencies are not configured")
	}
	if strings.TrimSpace(s.cfg.WebhookSecret) == "" {
		return WebhookResult{}, fmt.Errorf("webhook secret is not configured")
	}

	if !razorpay.VerifyWebhookSignature(rawBody, signature, s.cfg.WebhookSecret) {
		return WebhookResult{}, ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return WebhookResult{}, ErrValidation
	}
	if event.Event != eventPaymentCaptured {
		return WebhookResult{Skipped: true}, nil
	}

	entity := event.Payload.Payment.Entity
	orderID := strings.TrimSpace(entity.OrderID)
	paymentID := strings.TrimSpace(entity.ID)
	if orderID == "" || paymentID == "" {
		return WebhookResult{}, ErrValidation
	}

	var capturedAmount *float64
	if entity.Amount > 0 {
		usd := round2(float64(entity.Amount) / 100 / s.cfg.FXRate)
		capturedAmount = &usd
	}

	record, changed, err := s.purchases.CompleteByOrderID(ctx, orderID, paymentID, capturedAmount)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return WebhookResult{Skipped: true}, nil
		}
		return WebhookResult{}, err
	}

	return WebhookResult{
		PurchaseID:       record.ID,
		UserID:           record.UserID,
		Status:           record.Status,
		AlreadyCompleted: !changed,
	}, nil
}

// VerifyClient confirms a purchase from the client-reported payment result.
// It funnels through the same guarded completion as the webhook, so whichever
// path lands first wins and the other becomes a no-op success.
func (s *Service) VerifyClient(ctx context.Context, userID int64, orderID, paymentID, signature string) (VerifyResult, error) {
	if s.purchases == nil {
		return VerifyResult{}, fmt.Errorf("payments dependencies are not configured")
	}
	if userID <= 0 {
		return VerifyResult{}, ErrValidation
	}

	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	if orderID == "" || paymentID == "" || strings.TrimSpace(signature) == "" {
		return VerifyResult{}, ErrValidation
	}

	if !razorpay.VerifyPaymentSignature(orderID, paymentID, signature, s.cfg.KeySecret) {
		return VerifyResult{}, ErrInvalidSignature
	}

	purchase, err := s.purchases.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return VerifyResult{}, ErrPurchaseNotFound
		}
		return VerifyResult{}, err
	}
	if purchase.UserID != userID {
		return VerifyResult{}, ErrPurchaseNotFound
	}

	record, changed, err := s.purchases.CompleteByOrderID(ctx, orderID, paymentID, nil)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return VerifyResult{}, ErrPurchaseNotFound
		}
		return VerifyResult{}, err
	}

	return VerifyResult{
		PurchaseID:       record.ID,
		Status:           record.Status,
		AlreadyCompleted: !changed,
	}, nil
}

func (s *Service) prefillFor(ctx context.Context, userID int64) (string, string) {
	name, email := "User", "user@example.com"
	if s.users == nil {
		return name, email
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return name, email
	}
	if strings.TrimSpace(user.Name) != "" {
		name = user.Name
	}
	if strings.TrimSpace(user.Email) != "" {
		email = user.Email
	}
	return name, email
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
