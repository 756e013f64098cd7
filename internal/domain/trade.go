package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an executed simulated order with the account snapshot it produced.
type Trade struct {
	ID       string          `json:"id"`
	Action   Action          `json:"-"`
	Side     string          `json:"side"`
	Pair     string          `json:"pair"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	// Fee is charged in the quote currency.
	Fee  decimal.Decimal `json:"fee"`
	Time time.Time       `json:"ts"`
	// QuoteAfter and BaseAfter snapshot the account right after the mutation.
	QuoteAfter decimal.Decimal `json:"quote_after"`
	BaseAfter  decimal.Decimal `json:"base_after"`
}

// String returns a human-readable string representation.
func (t *Trade) String() string {
	return fmt.Sprintf("%s %s %s at %s (quote=%s base=%s)",
		t.Side, t.Quantity.StringFixed(8), t.Pair, t.Price.StringFixed(2),
		t.QuoteAfter.StringFixed(2), t.BaseAfter.StringFixed(8))
}

// TradeRecord bundles a trade with its store index.
type TradeRecord struct {
	Index uint64
	Trade Trade
}
