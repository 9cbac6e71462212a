package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Amanc77/Datamart-app/internal/domain/datasets"
)

// DatasetRepo reads the two purchasable dataset tables. Queries are
// filter-driven and capped at the purchased row count.
type DatasetRepo struct {
	pool *pgxpool.Pool
}

type RealEstateRow struct {
	City       string
	Price      float64
	Bedrooms   int
	Sqft       int
	Bathrooms  float64
	YearBuilt  int
	PropertyID string
}

type StartupFundingRow struct {
	Country      string
	Industry     string
	Valuation    float64
	Year         int
	StartupName  string
	AmountRaised float64
	FS           string
}

func NewDatasetRepo(pool *pgxpool.Pool) *DatasetRepo {
	return &DatasetRepo{pool: pool}
}

func (r *DatasetRepo) QueryRealEstate(ctx context.Context, f datasets.RealEstateFilter, limit int) ([]RealEstateRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit < 1 {
		return nil, fmt.Errorf("invalid row limit")
	}

	query, args := buildRealEstateQuery(f, limit)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query real estate rows: %w", err)
	}
	defer rows.Close()

	var out []RealEstateRow
	for rows.Next() {
		var row RealEstateRow
		if err := rows.Scan(&row.City, &row.Price, &row.Bedrooms, &row.Sqft, &row.Bathrooms, &row.YearBuilt, &row.PropertyID); err != nil {
			return nil, fmt.Errorf("scan real estate row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate real estate rows: %w", err)
	}

	return out, nil
}

func (r *DatasetRepo) QueryStartupFunding(ctx context.Context, f datasets.StartupFundingFilter, limit int) ([]StartupFundingRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit < 1 {
		return nil, fmt.Errorf("invalid row limit")
	}

	query, args := buildStartupFundingQuery(f, limit)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query startup funding rows: %w", err)
	}
	defer rows.Close()

	var out []StartupFundingRow
	for rows.Next() {
		var row StartupFundingRow
		if err := rows.Scan(&row.Country, &row.Industry, &row.Valuation, &row.Year, &row.StartupName, &row.AmountRaised, &row.FS); err != nil {
			return nil, fmt.Errorf("scan startup funding row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate startup funding rows: %w", err)
	}

	return out, nil
}

func buildRealEstateQuery(f datasets.RealEstateFilter, limit int) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`
SELECT city, price, bedrooms, sqft, bathrooms, year_built, property_id
FROM real_estate
WHERE 1=1`)

	if city := strings.TrimSpace(f.City); city != "" {
		args = append(args, city)
		fmt.Fprintf(&b, "\n  AND city ILIKE '%%' || $%d || '%%'", len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		fmt.Fprintf(&b, "\n  AND price >= $%d", len(args))
	}
	if f.YearFrom != nil {
		args = append(args, *f.YearFrom)
		fmt.Fprintf(&b, "\n  AND year_built >= $%d", len(args))
	}
	if f.YearTo != nil {
		args = append(args, *f.YearTo)
		fmt.Fprintf(&b, "\n  AND year_built <= $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&b, "\nORDER BY price DESC\nLIMIT $%d", len(args))

	return b.String(), args
}

func buildStartupFundingQuery(f datasets.StartupFundingFilter, limit int) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(`
SELECT country, industry, valuation, year, startup_name, amount_raised, fs
FROM startup_funding
WHERE 1=1`)

	if country := strings.TrimSpace(f.Country); country != "" {
		args = append(args, country)
		fmt.Fprintf(&b, "\n  AND country ILIKE '%%' || $%d || '%%'", len(args))
	}
	if industry := strings.TrimSpace(f.Industry); industry != "" {
		args = append(args, industry)
		fmt.Fprintf(&b, "\n  AND industry ILIKE '%%' || $%d || '%%'", len(args))
	}
	if f.MinAmountRaised != nil {
		args = append(args, *f.MinAmountRaised)
		fmt.Fprintf(&b, "\n  AND amount_raised >= $%d", len(args))
	}
	if f.YearFrom != nil {
		args = append(args, *f.YearFrom)
		fmt.Fprintf(&b, "\n  AND year >= $%d", len(args))
	}
	if f.YearTo != nil {
		args = append(args, *f.YearTo)
		fmt.Fprintf(&b, "\n  AND year <= $%d", len(args))
	}

	args = append(args, limit)
	fmt.Fprintf(&b, "\nORDER BY amount_raised DESC\nLIMIT $%d", len(args))

	return b.String(), args
}
