package pricer

import (
	"context"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/demidenkov/sibyl/internal/domain"
)

// BybitPricer fetches spot ticker prices from the Bybit V5 public API.
type BybitPricer struct {
	client *bybit.Client
}

// NewBybitPricer creates a Bybit-backed pricer.
func NewBybitPricer(client *bybit.Client) *BybitPricer {
	return &BybitPricer{client: client}
}

// GetPrice fetches the current spot price for the pair.
func (p *BybitPricer) GetPrice(ctx context.Context, pair domain.Pair) (domain.PricePoint, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "bybit: %v", err)
	}

	if len(result.Result.Spot.List) == 0 {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "bybit API returned empty prices for %s", pair.String())
	}

	price, err := decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "bybit returned malformed price %q: %v", result.Result.Spot.List[0].LastPrice, err)
	}

	point, err := domain.NewPricePoint(time.Now().UTC(), price)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "%v", err)
	}
	return point, nil
}
