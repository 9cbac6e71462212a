package datasets

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseType(t *testing.T) {
	cases := []struct {
		raw  string
		want Type
		ok   bool
	}{
		{"realestate", TypeRealEstate, true},
		{"RealEstate", TypeRealEstate, true},
		{" startupfunding ", TypeStartupFunding, true},
		{"stocks", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseType(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseType(%q) = %q, %v; want %q, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseFilterRealEstate(t *testing.T) {
	raw := json.RawMessage(`{"city":"Austin","minPrice":250000,"yearFrom":1990,"yearTo":2020}`)

	filter, err := ParseFilter(TypeRealEstate, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if filter.RealEstate == nil || filter.StartupFunding != nil {
		t.Fatalf("wrong variant set: %+v", filter)
	}

	f := filter.RealEstate
	if f.City != "Austin" || f.MinPrice == nil || *f.MinPrice != 250000 {
		t.Errorf("unexpected filter: %+v", f)
	}
	if f.YearFrom == nil || *f.YearFrom != 1990 || f.YearTo == nil || *f.YearTo != 2020 {
		t.Errorf("year bounds not parsed: %+v", f)
	}
}

func TestParseFilterRejectsForeignFields(t *testing.T) {
	// A startup funding filter must not pass as a real estate filter.
	raw := json.RawMessage(`{"country":"India"}`)

	if _, err := ParseFilter(TypeRealEstate, raw); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseFilterEmptyBody(t *testing.T) {
	filter, err := ParseFilter(TypeStartupFunding, nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if filter.StartupFunding == nil {
		t.Fatalf("expected zero-value startup funding filter")
	}
}

func TestParseFilterUnknownType(t *testing.T) {
	if _, err := ParseFilter(Type("stocks"), json.RawMessage(`{}`)); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	minPrice := 100000.0
	original := Filter{
		Type:       TypeRealEstate,
		RealEstate: &RealEstateFilter{City: "Austin", MinPrice: &minPrice},
	}

	raw, err := original.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := ParseFilter(TypeRealEstate, raw)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}
	if decoded.RealEstate.City != "Austin" || *decoded.RealEstate.MinPrice != minPrice {
		t.Fatalf("round trip mismatch: %+v", decoded.RealEstate)
	}
}
