package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/config"
	"github.com/demidenkov/sibyl/internal/console"
	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/ledger"
	"github.com/demidenkov/sibyl/internal/services/pricer"
	"github.com/demidenkov/sibyl/pkg/retrier"
)

// Pricer supplies the current quote for a pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (domain.PricePoint, error)
}

// Advisor turns observed market state into a trading decision.
type Advisor interface {
	Decide(ctx context.Context, history *domain.PriceHistory, account domain.Account, lastBuyPrice decimal.Decimal) (*domain.Decision, error)
}

// DecisionStore persists decision events.
type DecisionStore interface {
	Save(event domain.DecisionEvent) error
}

// SnapshotStore persists balance snapshots.
type SnapshotStore interface {
	Save(snapshot domain.BalanceSnapshot) error
}

// TradingBot drives the poll/decide/apply/report cycle on a fixed interval.
// One bot instance owns one pair; no cycle overlaps another.
type TradingBot struct {
	pair         domain.Pair
	pollInterval time.Duration
	pricer       Pricer
	advisor      Advisor
	ledger       *ledger.Ledger
	history      *domain.PriceHistory
	decisions    DecisionStore
	snapshots    SnapshotStore
	reporter     *console.Reporter
	quoteRetrier *retrier.Retrier
	logger       *zap.Logger

	started   time.Time
	lastPrice decimal.Decimal
}

// NewTradingBot wires the cycle participants together. The stores are
// best-effort sinks: their failures never block a cycle.
func NewTradingBot(
	cfg config.Config,
	quotes Pricer,
	advisor Advisor,
	book *ledger.Ledger,
	decisions DecisionStore,
	snapshots SnapshotStore,
	logger *zap.Logger,
) *TradingBot {
	return &TradingBot{
		pair:         cfg.Pair,
		pollInterval: cfg.PollInterval,
		pricer:       quotes,
		advisor:      advisor,
		ledger:       book,
		history:      domain.NewPriceHistory(cfg.HistorySize),
		decisions:    decisions,
		snapshots:    snapshots,
		reporter:     console.NewReporter(cfg.Pair),
		quoteRetrier: retrier.New(retrier.WithMaxRetries(cfg.QuoteRetries)),
		logger:       logger.With(zap.String("pair", cfg.Pair.String())),
	}
}

// Run executes cycles until ctx is cancelled, then prints the session
// summary. The first cycle runs immediately, before the first tick.
func (b *TradingBot) Run(ctx context.Context) error {
	b.started = time.Now()

	b.logger.Info("starting trading loop", zap.Duration("poll_interval", b.pollInterval))

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	b.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("shutting down trading loop")
			if b.lastPrice.IsPositive() {
				b.reporter.Summary(b.ledger.Summarize(b.lastPrice), b.lastPrice, time.Since(b.started))
			}
			return nil
		case <-ticker.C:
			b.cycle(ctx)
		}
	}
}

// cycle runs one poll/decide/apply/report pass. Every failure mode ends the
// cycle without ending the loop.
func (b *TradingBot) cycle(ctx context.Context) {
	point, err := retrier.DoWithData(b.quoteRetrier, ctx, func(ctx context.Context) (domain.PricePoint, error) {
		return b.pricer.GetPrice(ctx, b.pair)
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, pricer.ErrQuoteUnavailable) {
			b.logger.Warn("quote fetch failed, skipping cycle", zap.Error(err))
			b.reporter.Skip(err.Error())
			return
		}
		b.logger.Error("unexpected pricer failure, skipping cycle", zap.Error(err))
		b.reporter.Skip(err.Error())
		return
	}

	b.history.Append(point)
	b.lastPrice = point.Price

	decision, err := b.advisor.Decide(ctx, b.history, b.ledger.Account(), b.ledger.LastBuyPrice())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Warn("decision engine failed, holding", zap.Error(err))
		decision = domain.HoldDecision("decision engine unavailable: "+err.Error(), "")
	}

	var rejection string
	trade, err := b.ledger.Apply(decision, point)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			b.logger.Info("trade rejected", zap.String("action", decision.Action.String()), zap.Error(err))
		} else {
			b.logger.Error("ledger rejected decision", zap.Error(err))
		}
		rejection = err.Error()
	}

	b.persist(point, decision)
	b.reporter.Cycle(point, decision, trade, rejection, b.ledger.Account(), b.history.Len())
}

func (b *TradingBot) persist(point domain.PricePoint, decision *domain.Decision) {
	event := domain.DecisionEvent{
		Time:      point.Time,
		Pair:      b.pair.String(),
		Action:    decision.Action.String(),
		Reasoning: decision.Reasoning,
		RawReply:  decision.RawReply,
		Price:     point.Price.String(),
	}
	if err := b.decisions.Save(event); err != nil {
		b.logger.Warn("failed to persist decision event", zap.Error(err))
	}

	account := b.ledger.Account()
	snapshot := domain.BalanceSnapshot{
		Timestamp:  point.Time,
		Pair:       b.pair.String(),
		Base:       account.Base.String(),
		Quote:      account.Quote.String(),
		Price:      point.Price.String(),
		TotalQuote: account.Value(point.Price).String(),
	}
	if err := b.snapshots.Save(snapshot); err != nil {
		b.logger.Warn("failed to persist balance snapshot", zap.Error(err))
	}
}
