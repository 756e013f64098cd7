package promptbuilder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/services/market/indicators"
)

func TestBuildUserPrompt(t *testing.T) {
	pair := domain.Pair{From: "BTC", To: "EUR"}
	pb := NewPromptBuilder(pair)

	history := []domain.PricePoint{
		{Time: time.Now(), Price: decimal.NewFromInt(49000)},
		{Time: time.Now(), Price: decimal.NewFromInt(49500)},
		{Time: time.Now(), Price: decimal.NewFromInt(50000)},
	}

	prompt := pb.BuildUserPrompt(MarketContext{
		Current: history[2],
		History: history,
		Account: domain.Account{
			Quote: decimal.NewFromInt(1000),
			Base:  decimal.NewFromFloat(0.002),
		},
		LastBuyPrice: decimal.NewFromInt(48000),
		Indicators: &indicators.Snapshot{
			EMA20: decimal.NewFromInt(49400),
			RSI14: decimal.NewFromInt(62),
		},
	})

	assert.Contains(t, prompt, "BTC_EUR")
	assert.Contains(t, prompt, "50000.00")
	assert.Contains(t, prompt, "[49000.00,49500.00,50000.00]")
	assert.Contains(t, prompt, "Quote balance (EUR):** 1000.00")
	assert.Contains(t, prompt, "Asset balance (BTC):** 0.00200000")
	assert.Contains(t, prompt, "Last buy price:** 48000.00")
	assert.Contains(t, prompt, "EMA20:** 49400.00")
	assert.Contains(t, prompt, "RSI14:** 62.0")
}

func TestBuildUserPromptWithoutOptionalSections(t *testing.T) {
	pb := NewPromptBuilder(domain.Pair{From: "BTC", To: "EUR"})

	prompt := pb.BuildUserPrompt(MarketContext{
		Current: domain.PricePoint{Time: time.Now(), Price: decimal.NewFromInt(50000)},
		Account: domain.Account{Quote: decimal.NewFromInt(1200)},
	})

	assert.Contains(t, prompt, "No history yet")
	assert.Contains(t, prompt, "Last buy price:** none this run")
	assert.NotContains(t, prompt, "EMA20")
}

func TestBuildUserPromptSizeBounded(t *testing.T) {
	pb := NewPromptBuilder(domain.Pair{From: "BTC", To: "EUR"})

	window := make([]domain.PricePoint, 20)
	for i := range window {
		window[i] = domain.PricePoint{Time: time.Now(), Price: decimal.NewFromInt(int64(50000 + i))}
	}

	prompt := pb.BuildUserPrompt(MarketContext{
		Current: window[len(window)-1],
		History: window,
		Account: domain.Account{Quote: decimal.NewFromInt(1000)},
	})

	require.Contains(t, prompt, "last 20 polls")
	assert.Contains(t, prompt, "[50000.00,")
	assert.Contains(t, prompt, ",50019.00]")
	assert.Less(t, len(prompt), 4096, "prompt stays token-bounded")
}
