package domain

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PricePoint is a single market observation. Immutable once recorded.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}

// NewPricePoint builds a price point, rejecting non-positive prices.
func NewPricePoint(ts time.Time, price decimal.Decimal) (PricePoint, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return PricePoint{}, errors.Errorf("price must be positive, got %s", price.String())
	}
	return PricePoint{Time: ts, Price: price}, nil
}
