package datasets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownType = errors.New("unknown dataset type")

// RealEstateFilter narrows real estate rows. Text fields match as
// case-insensitive substrings, numeric fields are inclusive bounds.
type RealEstateFilter struct {
	City     string   `json:"city,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	YearFrom *int     `json:"yearFrom,omitempty"`
	YearTo   *int     `json:"yearTo,omitempty"`
}

type StartupFundingFilter struct {
	Country         string   `json:"country,omitempty"`
	Industry        string   `json:"industry,omitempty"`
	MinAmountRaised *float64 `json:"minAmountRaised,omitempty"`
	YearFrom        *int     `json:"yearFrom,omitempty"`
	YearTo          *int     `json:"yearTo,omitempty"`
}

// Filter is a tagged variant: exactly one of the pointers is set,
// matching the dataset type.
type Filter struct {
	Type           Type
	RealEstate     *RealEstateFilter
	StartupFunding *StartupFundingFilter
}

// ParseFilter decodes the raw filter object for the given dataset type.
// Unknown fields are rejected so a filter written for one dataset cannot
// silently pass as a filter for the other.
func ParseFilter(t Type, raw json.RawMessage) (Filter, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	switch t {
	case TypeRealEstate:
		var f RealEstateFilter
		if err := strictUnmarshal(raw, &f); err != nil {
			return Filter{}, fmt.Errorf("parse real estate filter: %w", err)
		}
		return Filter{Type: t, RealEstate: &f}, nil
	case TypeStartupFunding:
		var f StartupFundingFilter
		if err := strictUnmarshal(raw, &f); err != nil {
			return Filter{}, fmt.Errorf("parse startup funding filter: %w", err)
		}
		return Filter{Type: t, StartupFunding: &f}, nil
	default:
		return Filter{}, ErrUnknownType
	}
}

// Encode serializes the active variant back to the stored JSON shape.
func (f Filter) Encode() (json.RawMessage, error) {
	switch f.Type {
	case TypeRealEstate:
		if f.RealEstate == nil {
			return json.RawMessage("{}"), nil
		}
		return json.Marshal(f.RealEstate)
	case TypeStartupFunding:
		if f.StartupFunding == nil {
			return json.RawMessage("{}"), nil
		}
		return json.Marshal(f.StartupFunding)
	default:
		return nil, ErrUnknownType
	}
}

func strictUnmarshal(raw json.RawMessage, target any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
