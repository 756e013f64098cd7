// Package ledger keeps the simulated account state: balances and the ordered
// trade history, mutated exclusively by applying decisions.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/internal/domain"
)

// ErrInsufficientBalance marks a proposed trade the account cannot cover.
// It is a business rule, not a failure: the loop logs the rejection and
// the cycle ends as a no-op.
var ErrInsufficientBalance = errors.New("insufficient balance for trade")

var hundred = decimal.NewFromInt(100)

// Journal persists executed trades for audit. Write failures are logged,
// never propagated: the in-memory state is the source of truth.
type Journal interface {
	Record(trade domain.Trade) error
}

// Params holds the trading rule constants.
type Params struct {
	// BuyFraction of the quote balance converted per Buy, in (0, 1].
	BuyFraction decimal.Decimal
	// FeePercent charged on each trade's quote notional, e.g. 2 for 2%.
	FeePercent decimal.Decimal
	// MinNotional is the smallest quote amount a Buy may spend.
	MinNotional decimal.Decimal
}

// Ledger owns the account for one pair. Not safe for concurrent use: the
// loop is single-threaded and each cycle completes before the next begins.
type Ledger struct {
	pair         domain.Pair
	account      domain.Account
	initial      domain.Account
	params       Params
	trades       []domain.Trade
	lastBuyPrice decimal.Decimal
	journal      Journal
	logger       *zap.Logger
}

// New creates a ledger with the given starting balances.
func New(pair domain.Pair, starting domain.Account, params Params, journal Journal, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if starting.Quote.IsNegative() || starting.Base.IsNegative() {
		return nil, errors.Errorf("starting balances must be non-negative, got %s", starting.String())
	}
	if params.BuyFraction.LessThanOrEqual(decimal.Zero) || params.BuyFraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.Errorf("buy fraction must be in (0, 1], got %s", params.BuyFraction.String())
	}
	if params.FeePercent.IsNegative() {
		return nil, errors.Errorf("fee percent must be non-negative, got %s", params.FeePercent.String())
	}

	return &Ledger{
		pair:    pair,
		account: starting,
		initial: starting,
		params:  params,
		journal: journal,
		logger:  logger,
	}, nil
}

// Apply executes the decision against the account at the given price.
// Hold returns (nil, nil). Buy and Sell return the executed trade, or
// ErrInsufficientBalance when the account cannot cover the trade. The
// balance mutation and the history append happen together or not at all.
func (l *Ledger) Apply(decision *domain.Decision, point domain.PricePoint) (*domain.Trade, error) {
	switch decision.Action {
	case domain.ActionHold:
		return nil, nil
	case domain.ActionBuy:
		return l.buy(point)
	case domain.ActionSell:
		return l.sell(point)
	default:
		return nil, errors.Errorf("unknown action: %s", decision.Action)
	}
}

// buy converts BuyFraction of the quote balance into the asset.
func (l *Ledger) buy(point domain.PricePoint) (*domain.Trade, error) {
	spend := l.account.Quote.Mul(l.params.BuyFraction)
	if spend.LessThan(l.params.MinNotional) || spend.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrapf(ErrInsufficientBalance,
			"buy needs at least %s %s, fraction of balance is %s",
			l.params.MinNotional.String(), l.pair.To, spend.StringFixed(2))
	}

	fee := spend.Mul(l.params.FeePercent).Div(hundred)
	quantity := spend.Sub(fee).Div(point.Price)

	l.account.Quote = l.account.Quote.Sub(spend)
	l.account.Base = l.account.Base.Add(quantity)
	l.lastBuyPrice = point.Price

	return l.record(domain.ActionBuy, point, quantity, fee), nil
}

// sell converts the whole asset balance back into the quote currency.
func (l *Ledger) sell(point domain.PricePoint) (*domain.Trade, error) {
	quantity := l.account.Base
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Wrapf(ErrInsufficientBalance, "nothing to sell, %s balance is zero", l.pair.From)
	}

	gross := quantity.Mul(point.Price)
	fee := gross.Mul(l.params.FeePercent).Div(hundred)

	l.account.Base = decimal.Zero
	l.account.Quote = l.account.Quote.Add(gross.Sub(fee))

	return l.record(domain.ActionSell, point, quantity, fee), nil
}

func (l *Ledger) record(action domain.Action, point domain.PricePoint, quantity, fee decimal.Decimal) *domain.Trade {
	trade := domain.Trade{
		ID:         uuid.New().String(),
		Action:     action,
		Side:       action.String(),
		Pair:       l.pair.String(),
		Price:      point.Price,
		Quantity:   quantity,
		Fee:        fee,
		Time:       time.Now().UTC(),
		QuoteAfter: l.account.Quote,
		BaseAfter:  l.account.Base,
	}
	l.trades = append(l.trades, trade)

	if l.journal != nil {
		if err := l.journal.Record(trade); err != nil {
			l.logger.Warn("failed to journal trade", zap.Error(err), zap.String("trade_id", trade.ID))
		}
	}

	return &trade
}

// Account returns the current balances.
func (l *Ledger) Account() domain.Account {
	return l.account
}

// LastBuyPrice returns the price of the most recent buy, zero if none yet.
func (l *Ledger) LastBuyPrice() decimal.Decimal {
	return l.lastBuyPrice
}

// Trades returns the trade history in execution order. The returned slice
// is a copy.
func (l *Ledger) Trades() []domain.Trade {
	out := make([]domain.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// Summary describes the run outcome at a given price.
type Summary struct {
	Account     domain.Account
	TotalTrades int
	// PnL is the portfolio value at the given price minus the starting
	// balances valued at the same price.
	PnL decimal.Decimal
}

// Summarize computes the run summary at the last known price.
func (l *Ledger) Summarize(lastPrice decimal.Decimal) Summary {
	return Summary{
		Account:     l.account,
		TotalTrades: len(l.trades),
		PnL:         l.account.Value(lastPrice).Sub(l.initial.Value(lastPrice)),
	}
}
