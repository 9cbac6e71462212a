package postgres

import (
	"strings"
	"testing"

	"github.com/Amanc77/Datamart-app/internal/domain/datasets"
)

func TestBuildRealEstateQuery(t *testing.T) {
	minPrice := 250000.0
	yearFrom := 1990
	yearTo := 2020

	query, args := buildRealEstateQuery(datasets.RealEstateFilter{
		City:     " Austin ",
		MinPrice: &minPrice,
		YearFrom: &yearFrom,
		YearTo:   &yearTo,
	}, 50)

	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[0] != "Austin" {
		t.Errorf("city arg not trimmed: %q", args[0])
	}
	if args[4] != 50 {
		t.Errorf("limit must be the last arg, got %v", args[4])
	}

	for _, frag := range []string{
		"city ILIKE '%' || $1 || '%'",
		"price >= $2",
		"year_built >= $3",
		"year_built <= $4",
		"ORDER BY price DESC",
		"LIMIT $5",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
}

func TestBuildRealEstateQueryNoFilters(t *testing.T) {
	query, args := buildRealEstateQuery(datasets.RealEstateFilter{}, 10)

	if len(args) != 1 {
		t.Fatalf("expected only the limit arg, got %v", args)
	}
	if strings.Contains(query, "ILIKE") {
		t.Errorf("empty city must not add a predicate:\n%s", query)
	}
	if !strings.Contains(query, "LIMIT $1") {
		t.Errorf("query missing limit:\n%s", query)
	}
}

func TestBuildStartupFundingQuery(t *testing.T) {
	minRaised := 1e6
	yearFrom := 2015

	query, args := buildStartupFundingQuery(datasets.StartupFundingFilter{
		Country:         "India",
		Industry:        "fintech",
		MinAmountRaised: &minRaised,
		YearFrom:        &yearFrom,
	}, 100)

	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}

	for _, frag := range []string{
		"country ILIKE '%' || $1 || '%'",
		"industry ILIKE '%' || $2 || '%'",
		"amount_raised >= $3",
		"year >= $4",
		"ORDER BY amount_raised DESC",
		"LIMIT $5",
	} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
}
