package pricing

import (
	"errors"
	"math"
)

var ErrValidation = errors.New("invalid pricing input")

// Config holds the operator-controlled price knobs. UnitPriceCents is the
// USD price of one dataset row in cents; FXRate converts USD cents into
// gateway minor units (paise for INR).
type Config struct {
	UnitPriceCents int64
	FXRate         float64
}

// Quote is the price of a purchase in every unit the flow needs: exact USD
// cents for storage, derived USD for display, and gateway minor units for
// the order. Free marks a zero-amount quote that skips the gateway.
type Quote struct {
	RowCount    int
	AmountCents int64
	AmountUSD   float64
	AmountMinor int64
	Free        bool
}

type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	if cfg.UnitPriceCents < 0 {
		cfg.UnitPriceCents = 0
	}
	if cfg.FXRate <= 0 {
		cfg.FXRate = 1
	}
	return &Calculator{cfg: cfg}
}

// QuoteRows prices a row-count purchase. The per-row USD price is kept in
// integer cents so repeated quotes for the same count never drift; the FX
// conversion rounds once, at the end.
func (c *Calculator) QuoteRows(rowCount int) (Quote, error) {
	if rowCount < 1 {
		return Quote{}, ErrValidation
	}

	amountCents := int64(rowCount) * c.cfg.UnitPriceCents
	amountMinor := int64(math.Round(float64(amountCents) * c.cfg.FXRate))

	return Quote{
		RowCount:    rowCount,
		AmountCents: amountCents,
		AmountUSD:   float64(amountCents) / 100,
		AmountMinor: amountMinor,
		Free:        amountCents == 0,
	}, nil
}
