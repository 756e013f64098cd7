package pricer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/demidenkov/sibyl/internal/domain"
)

const ratesRequestTimeout = 10 * time.Second

// RatesPricer fetches prices from a plain JSON rates API of the form
//
//	{"btc_eur": {"buy": "64100.10", "sell": "64050.00"}, ...}
//
// The sell rate is used for trading decisions.
type RatesPricer struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewRatesPricer creates a rates API pricer. apiKey is optional and sent as
// a bearer token when present.
func NewRatesPricer(apiURL, apiKey string) *RatesPricer {
	return &RatesPricer{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: ratesRequestTimeout,
		},
	}
}

type rateEntry struct {
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
}

// GetPrice fetches the current sell rate for the pair.
func (p *RatesPricer) GetPrice(ctx context.Context, pair domain.Pair) (domain.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return domain.PricePoint{}, errors.Wrap(err, "create rates request")
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "rates request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "read rates response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "rates API returned status %d: %s", resp.StatusCode, string(body))
	}

	var rates map[string]rateEntry
	if err := json.Unmarshal(body, &rates); err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "malformed rates payload: %v", err)
	}

	entry, ok := rates[pair.RateKey()]
	if !ok {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "rates payload has no entry for %s", pair.RateKey())
	}

	price, err := decimal.NewFromString(entry.Sell)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "malformed sell rate %q: %v", entry.Sell, err)
	}

	point, err := domain.NewPricePoint(time.Now().UTC(), price)
	if err != nil {
		return domain.PricePoint{}, errors.Wrapf(ErrQuoteUnavailable, "%v", err)
	}
	return point, nil
}
