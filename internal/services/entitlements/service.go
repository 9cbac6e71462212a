package entitlements

import (
	"context"
	"fmt"

	pgrepo "github.com/Amanc77/Datamart-app/internal/repo/postgres"
)

type PurchaseStore interface {
	ListCompletedByUser(ctx context.Context, userID int64) ([]pgrepo.PurchaseRecord, error)
}

// Service exposes what a user owns: the completed purchases attached to
// their entitlement set.
type Service struct {
	purchases PurchaseStore
}

func NewService(purchases PurchaseStore) *Service {
	return &Service{purchases: purchases}
}

func (s *Service) ListPurchases(ctx context.Context, userID int64) ([]pgrepo.PurchaseRecord, error) {
	if s.purchases == nil {
		return nil, fmt.Errorf("purchase store is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	records, err := s.purchases.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user purchases: %w", err)
	}

	return records, nil
}
