package exports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Amanc77/Datamart-app/internal/domain/datasets"
	pgrepo "github.com/Amanc77/Datamart-app/internal/repo/postgres"
)

const csvContentType = "text/csv"

var (
	ErrValidation    = errors.New("validation error")
	ErrNotAuthorized = errors.New("purchase not accessible")
	ErrNoData        = errors.New("no rows matched the purchase filters")
)

type PurchaseStore interface {
	FindByID(ctx context.Context, purchaseID string) (pgrepo.PurchaseRecord, error)
}

type EntitlementStore interface {
	HasPurchase(ctx context.Context, userID int64, purchaseID string) (bool, error)
}

type DatasetStore interface {
	QueryRealEstate(ctx context.Context, f datasets.RealEstateFilter, limit int) ([]pgrepo.RealEstateRow, error)
	QueryStartupFunding(ctx context.Context, f datasets.StartupFundingFilter, limit int) ([]pgrepo.StartupFundingRow, error)
}

type Archive interface {
	PutExport(ctx context.Context, key string, data []byte, contentType string) error
}

type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service turns a completed purchase into the CSV file the buyer paid for.
// The stored filters and row count are replayed against the dataset tables
// at download time.
type Service struct {
	purchases    PurchaseStore
	entitlements EntitlementStore
	data         DatasetStore
	archive      Archive
	logger       *zap.Logger
}

type Dependencies struct {
	Purchases    PurchaseStore
	Entitlements EntitlementStore
	Datasets     DatasetStore
	Archive      Archive
	Logger       *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		purchases:    deps.Purchases,
		entitlements: deps.Entitlements,
		data:         deps.Datasets,
		archive:      deps.Archive,
		logger:       logger,
	}
}

func (s *Service) Download(ctx context.Context, userID int64, purchaseID string) (Export, error) {
	if s.purchases == nil || s.entitlements == nil || s.data == nil {
		return Export{}, fmt.Errorf("exports dependencies are not configured")
	}
	if userID <= 0 {
		return Export{}, ErrValidation
	}

	purchaseID = strings.TrimSpace(purchaseID)
	if _, err := uuid.Parse(purchaseID); err != nil {
		return Export{}, ErrValidation
	}

	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return Export{}, ErrNotAuthorized
		}
		return Export{}, err
	}
	if purchase.UserID != userID || !strings.EqualFold(purchase.Status, pgrepo.PurchaseStatusCompleted) {
		return Export{}, ErrNotAuthorized
	}

	owned, err := s.entitlements.HasPurchase(ctx, userID, purchaseID)
	if err != nil {
		return Export{}, fmt.Errorf("check purchase entitlement: %w", err)
	}
	if !owned {
		return Export{}, ErrNotAuthorized
	}

	datasetType, ok := datasets.ParseType(purchase.DatasetType)
	if !ok {
		return Export{}, fmt.Errorf("purchase %s has unknown dataset type %q", purchase.ID, purchase.DatasetType)
	}
	filter, err := datasets.ParseFilter(datasetType, purchase.Filters)
	if err != nil {
		return Export{}, fmt.Errorf("decode stored filters for purchase %s: %w", purchase.ID, err)
	}

	data, err := s.exportRows(ctx, datasetType, filter, purchase.RowCount)
	if err != nil {
		return Export{}, err
	}

	export := Export{
		Filename:    fmt.Sprintf("%s_%s.csv", datasetType, purchase.ID),
		ContentType: csvContentType,
		Data:        data,
	}
	s.archiveExport(ctx, export)

	return export, nil
}

func (s *Service) exportRows(ctx context.Context, datasetType datasets.Type, filter datasets.Filter, limit int) ([]byte, error) {
	switch datasetType {
	case datasets.TypeRealEstate:
		var f datasets.RealEstateFilter
		if filter.RealEstate != nil {
			f = *filter.RealEstate
		}
		rows, err := s.data.QueryRealEstate(ctx, f, limit)
		if err != nil {
			return nil, fmt.Errorf("query real estate export: %w", err)
		}
		if len(rows) == 0 {
			return nil, ErrNoData
		}
		return encodeRealEstateCSV(rows)
	case datasets.TypeStartupFunding:
		var f datasets.StartupFundingFilter
		if filter.StartupFunding != nil {
			f = *filter.StartupFunding
		}
		rows, err := s.data.QueryStartupFunding(ctx, f, limit)
		if err != nil {
			return nil, fmt.Errorf("query startup funding export: %w", err)
		}
		if len(rows) == 0 {
			return nil, ErrNoData
		}
		return encodeStartupFundingCSV(rows)
	default:
		return nil, fmt.Errorf("unknown dataset type %q", datasetType)
	}
}

// archiveExport uploads a copy of the generated file. The download succeeds
// regardless: the archive is an audit trail, not part of fulfillment.
func (s *Service) archiveExport(ctx context.Context, export Export) {
	if s.archive == nil {
		return
	}

	key := "exports/" + export.Filename
	if err := s.archive.PutExport(ctx, key, export.Data, export.ContentType); err != nil {
		s.logger.Warn("archive export upload failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
