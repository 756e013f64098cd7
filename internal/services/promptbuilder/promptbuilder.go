// Package promptbuilder formats the polled market state into compact,
// token-bounded prompts for the trading LLM.
package promptbuilder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/services/market/indicators"
)

// MarketContext contains everything the model sees for one cycle.
type MarketContext struct {
	// Current is the price point fetched this cycle.
	Current domain.PricePoint
	// History is the trailing window of observations, oldest first.
	// The builder trusts the caller to keep it bounded.
	History []domain.PricePoint
	// Account is the wallet state before the decision.
	Account domain.Account
	// LastBuyPrice is zero when no buy happened yet this run.
	LastBuyPrice decimal.Decimal
	// Indicators is optional; nil while the history is too short.
	Indicators *indicators.Snapshot
}

// PromptBuilder constructs user prompts for one trading pair.
type PromptBuilder struct {
	pair domain.Pair
}

// NewPromptBuilder creates a PromptBuilder instance.
func NewPromptBuilder(pair domain.Pair) *PromptBuilder {
	return &PromptBuilder{pair: pair}
}

// BuildUserPrompt constructs the complete user prompt from market context.
func (pb *PromptBuilder) BuildUserPrompt(ctx MarketContext) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Market snapshot for %s\n\n", pb.pair.String()))

	sb.WriteString(fmt.Sprintf("**Current price (%s):** %s\n\n", pb.pair.To, ctx.Current.Price.StringFixed(2)))

	sb.WriteString(pb.formatHistory(ctx.History))

	if ctx.Indicators != nil {
		sb.WriteString("## Indicators\n\n")
		sb.WriteString(fmt.Sprintf("**EMA20:** %s\n", ctx.Indicators.EMA20.StringFixed(2)))
		sb.WriteString(fmt.Sprintf("**RSI14:** %s\n\n", ctx.Indicators.RSI14.StringFixed(1)))
	}

	sb.WriteString("## Account\n\n")
	sb.WriteString(fmt.Sprintf("**Quote balance (%s):** %s\n", pb.pair.To, ctx.Account.Quote.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("**Asset balance (%s):** %s\n", pb.pair.From, ctx.Account.Base.StringFixed(8)))
	if ctx.LastBuyPrice.GreaterThan(decimal.Zero) {
		sb.WriteString(fmt.Sprintf("**Last buy price:** %s\n", ctx.LastBuyPrice.StringFixed(2)))
	} else {
		sb.WriteString("**Last buy price:** none this run\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Instructions\n\n")
	sb.WriteString("Given the price window, indicators and balances above, decide what to do this cycle.\n")
	sb.WriteString("Reply with the JSON object only.\n")

	return sb.String()
}

// formatHistory renders the trailing price window as a compact array,
// oldest first, prices rounded to 2 decimal places.
func (pb *PromptBuilder) formatHistory(history []domain.PricePoint) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Recent Prices (last %d polls, oldest first)\n\n", len(history)))

	if len(history) == 0 {
		sb.WriteString("No history yet\n\n")
		return sb.String()
	}

	sb.WriteString("[")
	for i, p := range history {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(p.Price.StringFixed(2))
	}
	sb.WriteString("]\n\n")

	return sb.String()
}
