// Package advisor implements the LLM-backed decision engine: it packages
// the price window and account state into a prompt, queries the model and
// strictly parses the reply into a trading decision.
package advisor

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/internal/clients"
	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/services/market/indicators"
	"github.com/demidenkov/sibyl/internal/services/promptbuilder"
)

// Advisor asks the model for a Buy/Sell/Hold verdict once per cycle.
type Advisor struct {
	llm     clients.LLMClient
	prompts *promptbuilder.PromptBuilder
	window  int
	logger  *zap.Logger
}

// New creates an advisor. window bounds how many trailing price points are
// shown to the model regardless of retained history size.
func New(pair domain.Pair, llm clients.LLMClient, window int, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = 20
	}
	return &Advisor{
		llm:     llm,
		prompts: promptbuilder.NewPromptBuilder(pair),
		window:  window,
		logger:  logger,
	}
}

// Decide queries the model for the current cycle.
//
// A reply that fails strict validation degrades to a Hold decision carrying
// the raw reply for audit; the advisor never invents a trade. Endpoint
// failures surface as clients.ErrInferenceUnavailable. No retry happens
// here; retry policy belongs to the loop.
func (a *Advisor) Decide(ctx context.Context, history *domain.PriceHistory, account domain.Account, lastBuyPrice decimal.Decimal) (*domain.Decision, error) {
	current, ok := history.Last()
	if !ok {
		return nil, errors.New("cannot decide on empty price history")
	}

	marketCtx := promptbuilder.MarketContext{
		Current:      current,
		History:      history.Window(a.window),
		Account:      account,
		LastBuyPrice: lastBuyPrice,
		Indicators:   indicators.Compute(history.Closes(history.Len())),
	}

	userPrompt := a.prompts.BuildUserPrompt(marketCtx)

	raw, err := a.llm.Chat(ctx, promptbuilder.SystemPrompt, userPrompt)
	if err != nil {
		return nil, errors.Wrap(err, "get model decision")
	}

	decision, err := domain.ParseDecision(raw)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedDecision) {
			a.logger.Warn("model reply failed validation, holding",
				zap.Error(err),
				zap.String("raw_reply", raw))
			return domain.HoldDecision(fmt.Sprintf("model reply rejected: %v", err), raw), nil
		}
		return nil, errors.Wrap(err, "parse model decision")
	}

	return decision, nil
}
