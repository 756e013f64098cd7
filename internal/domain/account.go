package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Account holds the simulated wallet for one trading pair.
// Both balances stay non-negative after every mutation; the ledger rejects
// any trade that would violate this.
type Account struct {
	// Quote is the cash balance in the quote currency (e.g. EUR).
	Quote decimal.Decimal
	// Base is the asset balance in the base currency (e.g. BTC).
	Base decimal.Decimal
}

// Value returns the total portfolio value in the quote currency at the given price.
func (a Account) Value(price decimal.Decimal) decimal.Decimal {
	return a.Quote.Add(a.Base.Mul(price))
}

// String returns a human-readable string representation.
func (a Account) String() string {
	return fmt.Sprintf("quote=%s base=%s", a.Quote.StringFixed(2), a.Base.StringFixed(8))
}
