// Package pricer provides quote providers for fetching the current market price.
package pricer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/demidenkov/sibyl/internal/domain"
)

// ErrQuoteUnavailable marks any upstream failure: transport errors, timeouts,
// non-2xx responses and malformed payloads. The loop skips the cycle on it.
var ErrQuoteUnavailable = errors.New("quote provider unavailable")

// Pricer fetches the current exchange rate for a trading pair.
// Every call hits the network; nothing is cached.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (domain.PricePoint, error)
}
