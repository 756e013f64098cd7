// Package indicators computes technical indicators over the polled price
// history using the cinar/indicator library.
package indicators

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
)

const (
	emaPeriod = 20
	rsiPeriod = 14
)

// Snapshot holds the latest indicator values for the price series.
type Snapshot struct {
	// EMA20 is the 20-period Exponential Moving Average of the close price.
	EMA20 decimal.Decimal
	// RSI14 is the 14-period Relative Strength Index (range 0-100).
	RSI14 decimal.Decimal
}

// Compute returns the most recent EMA20 and RSI14 over the given close
// prices, oldest first. Returns nil when the series is too short; the
// prompt simply omits the section then.
func Compute(closes []decimal.Decimal) *Snapshot {
	if len(closes) < rsiPeriod+1 || len(closes) < emaPeriod {
		return nil
	}

	floats := decimalsToFloat64(closes)

	ema := trend.NewEmaWithPeriod[float64](emaPeriod)
	emaValues := helper.ChanToSlice(ema.Compute(helper.SliceToChan(floats)))
	if len(emaValues) == 0 {
		return nil
	}

	rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
	rsiValues := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(floats)))
	if len(rsiValues) == 0 {
		return nil
	}

	return &Snapshot{
		EMA20: decimal.NewFromFloat(emaValues[len(emaValues)-1]),
		RSI14: decimal.NewFromFloat(rsiValues[len(rsiValues)-1]),
	}
}

func decimalsToFloat64(values []decimal.Decimal) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		f, _ := v.Float64()
		out[i] = f
	}
	return out
}
