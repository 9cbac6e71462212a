package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

// PurchaseRecord is one dataset-access request and its payment resolution
// state. PaymentRef holds the gateway order id for paid purchases and the
// sentinel "FREE" for zero-amount ones; GatewayPaymentID is recorded on
// confirmation.
type PurchaseRecord struct {
	ID               string
	UserID           int64
	DatasetType      string
	Filters          json.RawMessage
	RowCount         int
	Amount           float64
	Status           string
	PaymentRef       *string
	GatewayPaymentID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

func (r *PurchaseRepo) Create(
	ctx context.Context,
	userID int64,
	datasetType string,
	filters json.RawMessage,
	rowCount int,
	amount float64,
	status string,
	paymentRef *string,
) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(datasetType) == "" || rowCount < 1 || amount < 0 {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase create payload")
	}
	if status != PurchaseStatusPending && status != PurchaseStatusCompleted {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase status %q", status)
	}
	if len(filters) == 0 {
		filters = json.RawMessage("{}")
	}

	record, err := scanPurchase(r.pool.QueryRow(ctx, `
INSERT INTO purchases (
	id,
	user_id,
	dataset_type,
	filters,
	row_count,
	amount,
	status,
	payment_ref,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, NOW(), NOW())
RETURNING id, user_id, dataset_type, filters, row_count, amount, status, payment_ref, gateway_payment_id, created_at, updated_at
`, uuid.NewString(), userID, strings.ToLower(strings.TrimSpace(datasetType)), string(filters), rowCount, amount, status, paymentRef))
	if err != nil {
		return PurchaseRecord{}, fmt.Errorf("create purchase: %w", err)
	}

	return record, nil
}

// SetOrderRef stores the gateway order id issued for a pending purchase.
func (r *PurchaseRepo) SetOrderRef(ctx context.Context, purchaseID, orderID string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(purchaseID) == "" || strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("invalid order ref payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE purchases
SET payment_ref = $2, updated_at = NOW()
WHERE id = $1
`, purchaseID, strings.TrimSpace(orderID))
	if err != nil {
		return fmt.Errorf("set purchase order ref: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}

	return nil
}

func (r *PurchaseRepo) FindByID(ctx context.Context, purchaseID string) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(purchaseID) == "" {
		return PurchaseRecord{}, fmt.Errorf("invalid purchase id")
	}

	record, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT id, user_id, dataset_type, filters, row_count, amount, status, payment_ref, gateway_payment_id, created_at, updated_at
FROM purchases
WHERE id = $1
LIMIT 1
`, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrPurchaseNotFound
		}
		return PurchaseRecord{}, fmt.Errorf("find purchase by id: %w", err)
	}

	return record, nil
}

func (r *PurchaseRepo) FindByOrderID(ctx context.Context, orderID string) (PurchaseRecord, error) {
	if r.pool == nil {
		return PurchaseRecord{}, fmt.Errorf("postgres pool is nil")
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return PurchaseRecord{}, fmt.Errorf("invalid order id")
	}

	record, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT id, user_id, dataset_type, filters, row_count, amount, status, payment_ref, gateway_payment_id, created_at, updated_at
FROM purchases
WHERE payment_ref = $1
LIMIT 1
`, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRecord{}, ErrPurchaseNotFound
		}
		return PurchaseRecord{}, fmt.Errorf("find purchase by order id: %w", err)
	}

	return record, nil
}

// ListCompletedByUser returns the caller's completed purchases, newest first.
func (r *PurchaseRepo) ListCompletedByUser(ctx context.Context, userID int64) ([]PurchaseRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT p.id, p.user_id, p.dataset_type, p.filters, p.row_count, p.amount, p.status, p.payment_ref, p.gateway_payment_id, p.created_at, p.updated_at
FROM purchases p
JOIN user_purchases up ON up.purchase_id = p.id
WHERE up.user_id = $1
  AND p.status = 'completed'
ORDER BY p.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed purchases: %w", err)
	}
	defer rows.Close()

	var records []PurchaseRecord
	for rows.Next() {
		record, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completed purchase: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed purchases: %w", err)
	}

	return records, nil
}

// CompleteByOrderID flips a purchase to completed and attaches it to the
// owner's entitlement set in one transaction. The UPDATE is guarded by the
// current status, so concurrent webhook and client-verify deliveries apply
// the side effects at most once: the first caller gets changed=true, every
// later caller gets the already-completed record with changed=false.
// A non-nil capturedAmount overwrites the stored amount (webhook path).
func (r *PurchaseRepo) CompleteByOrderID(ctx context.Context, orderID, paymentID string, capturedAmount *float64) (PurchaseRecord, bool, error) {
	if r.pool == nil {
		return PurchaseRecord{}, false, fmt.Errorf("postgres pool is nil")
	}
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	if orderID == "" || paymentID == "" {
		return PurchaseRecord{}, false, fmt.Errorf("invalid completion payload")
	}

	var (
		updated PurchaseRecord
		changed bool
	)
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		record, err := scanPurchase(tx.QueryRow(ctx, `
UPDATE purchases
SET
	status = 'completed',
	gateway_payment_id = $2,
	amount = COALESCE($3, amount),
	updated_at = NOW()
WHERE payment_ref = $1
  AND status <> 'completed'
RETURNING id, user_id, dataset_type, filters, row_count, amount, status, payment_ref, gateway_payment_id, created_at, updated_at
`, orderID, paymentID, capturedAmount))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("mark purchase completed: %w", err)
		}

		if err := attachPurchase(ctx, tx, record.UserID, record.ID); err != nil {
			return err
		}

		updated = record
		changed = true
		return nil
	})
	if err != nil {
		return PurchaseRecord{}, false, err
	}

	if changed {
		return updated, true, nil
	}

	existing, err := r.FindByOrderID(ctx, orderID)
	if err != nil {
		return PurchaseRecord{}, false, err
	}
	if !strings.EqualFold(existing.Status, PurchaseStatusCompleted) {
		return PurchaseRecord{}, false, fmt.Errorf("purchase did not transition to completed status")
	}
	return existing, false, nil
}

func scanPurchase(row pgx.Row) (PurchaseRecord, error) {
	var (
		record     PurchaseRecord
		rawFilters []byte
	)
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.DatasetType,
		&rawFilters,
		&record.RowCount,
		&record.Amount,
		&record.Status,
		&record.PaymentRef,
		&record.GatewayPaymentID,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return PurchaseRecord{}, err
	}
	if len(rawFilters) == 0 {
		rawFilters = []byte("{}")
	}
	record.Filters = json.RawMessage(rawFilters)
	return record, nil
}
