package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	pgrepo "github.com/Amanc77/Datamart-app/internal/repo/postgres"
)

func encodeRealEstateCSV(rows []pgrepo.RealEstateRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"city", "price", "bedrooms", "sqft", "bathrooms", "yearBuilt", "propertyId"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.City,
			formatFloat(row.Price),
			strconv.Itoa(row.Bedrooms),
			strconv.Itoa(row.Sqft),
			formatFloat(row.Bathrooms),
			strconv.Itoa(row.YearBuilt),
			row.PropertyID,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeStartupFundingCSV(rows []pgrepo.StartupFundingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"country", "industry", "valuation", "year", "startupName", "amountRaised", "fs"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Country,
			row.Industry,
			formatFloat(row.Valuation),
			strconv.Itoa(row.Year),
			row.StartupName,
			formatFloat(row.AmountRaised),
			row.FS,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
