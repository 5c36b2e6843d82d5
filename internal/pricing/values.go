package pricing

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

var priceFormatting = strings.NewReplacer(",", "", "$", "", " ", "", "\u00a0", "")

// parsePrice converts a price cell such as "1,250,000" or "$980000".
func parsePrice(cell string) (float64, error) {
	d, err := decimal.NewFromString(priceFormatting.Replace(strings.TrimSpace(cell)))
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", cell, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// numericValues returns the values of s as float64. Int and float series are
// converted directly; string series are parsed as formatted prices.
// s must not contain NA elements.
func numericValues(s series.Series) ([]float64, error) {
	switch s.Type() {
	case series.Int, series.Float:
		return s.Float(), nil
	case series.Bool:
		return nil, fmt.Errorf("column %q is boolean, not numeric", s.Name)
	}

	records := s.Records()
	values := make([]float64, len(records))
	for i, record := range records {
		v, err := parsePrice(record)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", s.Name, i, err)
		}
		values[i] = v
	}
	return values, nil
}
