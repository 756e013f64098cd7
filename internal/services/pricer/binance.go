package pricer

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/demidenkov/sibyl/internal/domain"
)

// BinancePricer fetches real market prices from the Binance public API
// without requiring authentication.
type BinancePricer struct {
	client *binance.Client
}

// NewBinancePricer creates a Binance-backed pricer.
func NewBinancePricer(client *binance.Client) *BinancePricer {
	return &BinancePricer{client: client}
}

// GetPrice fetches the current market price for the pair.
func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) (domain.PricePoint, error) {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "binance: %v", err)
	}
	if len(prices) == 0 {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "binance API returned empty prices for %s", pair.String())
	}

	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "binance returned malformed price %q: %v", prices[0].Price, err)
	}

	point, err := domain.NewPricePoint(time.Now().UTC(), price)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "%v", err)
	}
	return point, nil
}
