package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EntitlementRepo maintains the user_purchases set: which purchases a user
// may download. Membership is set-semantic, re-adding is a no-op.
type EntitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) *EntitlementRepo {
	return &EntitlementRepo{pool: pool}
}

func (r *EntitlementRepo) AttachPurchase(ctx context.Context, userID int64, purchaseID string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	return attachPurchase(ctx, r.pool, userID, purchaseID)
}

func (r *EntitlementRepo) HasPurchase(ctx context.Context, userID int64, purchaseID string) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(purchaseID) == "" {
		return false, fmt.Errorf("invalid entitlement lookup")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM user_purchases
	WHERE user_id = $1
	  AND purchase_id = $2
)
`, userID, purchaseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check entitlement: %w", err)
	}

	return exists, nil
}

// attachPurchase is shared between the free checkout path (pool) and the
// completion transaction (tx).
func attachPurchase(ctx context.Context, db execer, userID int64, purchaseID string) error {
	if userID <= 0 || strings.TrimSpace(purchaseID) == "" {
		return fmt.Errorf("invalid entitlement payload")
	}

	_, err := db.Exec(ctx, `
INSERT INTO user_purchases (user_id, purchase_id, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id, purchase_id) DO NOTHING
`, userID, purchaseID)
	if err != nil {
		return fmt.Errorf("attach purchase to user: %w", err)
	}

	return nil
}
