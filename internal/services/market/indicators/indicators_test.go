package indicators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNeedsEnoughData(t *testing.T) {
	short := make([]decimal.Decimal, 10)
	for i := range short {
		short[i] = decimal.NewFromInt(int64(100 + i))
	}

	assert.Nil(t, Compute(short))
	assert.Nil(t, Compute(nil))
}

func TestComputeRisingSeries(t *testing.T) {
	closes := make([]decimal.Decimal, 40)
	for i := range closes {
		closes[i] = decimal.NewFromInt(int64(100 + i))
	}

	snap := Compute(closes)
	require.NotNil(t, snap)

	// strictly rising series: RSI pinned near 100, EMA trails the last close
	assert.True(t, snap.RSI14.GreaterThan(decimal.NewFromInt(90)), "RSI14 = %s", snap.RSI14)
	assert.True(t, snap.EMA20.GreaterThan(decimal.NewFromInt(100)))
	assert.True(t, snap.EMA20.LessThanOrEqual(decimal.NewFromInt(139)))
}
