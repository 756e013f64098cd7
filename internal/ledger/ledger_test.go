package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/internal/domain"
)

var testPair = domain.Pair{From: "BTC", To: "EUR"}

func newTestLedger(t *testing.T, quote, base string, params Params) *Ledger {
	t.Helper()
	starting := domain.Account{
		Quote: decimal.RequireFromString(quote),
		Base:  decimal.RequireFromString(base),
	}
	l, err := New(testPair, starting, params, nil, zap.NewNop())
	require.NoError(t, err)
	return l
}

func defaultParams() Params {
	return Params{
		BuyFraction: decimal.NewFromFloat(0.1),
		FeePercent:  decimal.Zero,
		MinNotional: decimal.NewFromInt(10),
	}
}

func at(t *testing.T, price string) domain.PricePoint {
	t.Helper()
	p, err := domain.NewPricePoint(time.Now(), decimal.RequireFromString(price))
	require.NoError(t, err)
	return p
}

func buy() *domain.Decision  { return &domain.Decision{Action: domain.ActionBuy, Reasoning: "test"} }
func sell() *domain.Decision { return &domain.Decision{Action: domain.ActionSell, Reasoning: "test"} }
func hold() *domain.Decision { return &domain.Decision{Action: domain.ActionHold, Reasoning: "test"} }

func TestBuyScenario(t *testing.T) {
	// starting {cash: 1000, asset: 0}, price 50000, fraction 0.1
	l := newTestLedger(t, "1000", "0", defaultParams())

	trade, err := l.Apply(buy(), at(t, "50000"))
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, domain.ActionBuy, trade.Action)
	assert.Equal(t, "0.002", trade.Quantity.String())
	assert.Equal(t, "50000", trade.Price.String())
	assert.Equal(t, "900", l.Account().Quote.String())
	assert.Equal(t, "0.002", l.Account().Base.String())
	assert.Equal(t, "50000", l.LastBuyPrice().String())
}

func TestSellAllScenario(t *testing.T) {
	// {cash: 900, asset: 0.002}, price rises to 60000, sell all -> 1020
	l := newTestLedger(t, "900", "0.002", defaultParams())

	trade, err := l.Apply(sell(), at(t, "60000"))
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, "0.002", trade.Quantity.String())
	assert.Equal(t, "1020", l.Account().Quote.String())
	assert.True(t, l.Account().Base.IsZero())
}

func TestHoldIsNoOp(t *testing.T) {
	l := newTestLedger(t, "1000", "0.5", defaultParams())

	trade, err := l.Apply(hold(), at(t, "50000"))
	require.NoError(t, err)
	assert.Nil(t, trade)

	assert.Equal(t, "1000", l.Account().Quote.String())
	assert.Equal(t, "0.5", l.Account().Base.String())
	assert.Empty(t, l.Trades())
}

func TestRoundTripLawAtZeroFee(t *testing.T) {
	l := newTestLedger(t, "1000", "0", defaultParams())
	price := at(t, "43210.55")

	_, err := l.Apply(buy(), price)
	require.NoError(t, err)
	_, err = l.Apply(sell(), price)
	require.NoError(t, err)

	// equality up to division rounding of the bought quantity
	diff := l.Account().Quote.Sub(decimal.NewFromInt(1000)).Abs()
	assert.True(t, diff.LessThan(decimal.New(1, -9)),
		"buy then sell at the same price with zero fee restores cash, got %s", l.Account().Quote)
	assert.True(t, l.Account().Base.IsZero())
}

func TestBuyRejectedBelowMinNotional(t *testing.T) {
	l := newTestLedger(t, "50", "0", defaultParams()) // fraction yields 5 < min 10

	trade, err := l.Apply(buy(), at(t, "50000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Nil(t, trade)

	assert.Equal(t, "50", l.Account().Quote.String(), "rejected buy leaves balances untouched")
	assert.Empty(t, l.Trades())
}

func TestBuyRejectedWithZeroCash(t *testing.T) {
	l := newTestLedger(t, "0", "1", defaultParams())

	_, err := l.Apply(buy(), at(t, "50000"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestSellRejectedWithZeroAsset(t *testing.T) {
	l := newTestLedger(t, "1000", "0", defaultParams())

	trade, err := l.Apply(sell(), at(t, "50000"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Nil(t, trade)
	assert.Equal(t, "1000", l.Account().Quote.String())
}

func TestBalancesNeverGoNegative(t *testing.T) {
	l := newTestLedger(t, "1200", "0.3", Params{
		BuyFraction: decimal.NewFromFloat(0.25),
		FeePercent:  decimal.NewFromInt(2),
		MinNotional: decimal.NewFromInt(10),
	})

	decisions := []*domain.Decision{buy(), sell(), sell(), buy(), buy(), sell(), buy(), hold(), buy(), sell()}
	prices := []string{"50000", "51000", "49000", "48000", "52000", "53000", "47000", "46000", "45000", "50500"}

	for i, d := range decisions {
		_, err := l.Apply(d, at(t, prices[i]))
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
		assert.False(t, l.Account().Quote.IsNegative(), "quote negative after step %d", i)
		assert.False(t, l.Account().Base.IsNegative(), "base negative after step %d", i)
	}
}

func TestFeeCharged(t *testing.T) {
	l := newTestLedger(t, "1000", "0", Params{
		BuyFraction: decimal.NewFromFloat(0.1),
		FeePercent:  decimal.NewFromInt(2),
		MinNotional: decimal.NewFromInt(10),
	})

	trade, err := l.Apply(buy(), at(t, "50000"))
	require.NoError(t, err)

	// spends 100, fee 2, 98 buys 0.00196 BTC
	assert.Equal(t, "2", trade.Fee.String())
	assert.Equal(t, "0.00196", trade.Quantity.String())
	assert.Equal(t, "900", l.Account().Quote.String())
}

func TestTradeHistoryOrderAndSnapshots(t *testing.T) {
	l := newTestLedger(t, "1000", "0", defaultParams())

	_, err := l.Apply(buy(), at(t, "50000"))
	require.NoError(t, err)
	_, err = l.Apply(sell(), at(t, "60000"))
	require.NoError(t, err)

	trades := l.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, domain.ActionBuy, trades[0].Action)
	assert.Equal(t, domain.ActionSell, trades[1].Action)
	assert.True(t, !trades[1].Time.Before(trades[0].Time))

	assert.Equal(t, "900", trades[0].QuoteAfter.String())
	assert.Equal(t, "0.002", trades[0].BaseAfter.String())
	assert.Equal(t, "1020", trades[1].QuoteAfter.String())
	assert.True(t, trades[1].BaseAfter.IsZero())

	assert.NotEmpty(t, trades[0].ID)
	assert.NotEqual(t, trades[0].ID, trades[1].ID)
}

func TestSummarize(t *testing.T) {
	l := newTestLedger(t, "1000", "0", defaultParams())

	_, err := l.Apply(buy(), at(t, "50000"))
	require.NoError(t, err)

	s := l.Summarize(decimal.NewFromInt(60000))
	assert.Equal(t, 1, s.TotalTrades)
	// 900 + 0.002*60000 = 1020 vs initial 1000 valued at 60000
	assert.Equal(t, "20", s.PnL.String())
}

type failingJournal struct{ calls int }

func (j *failingJournal) Record(domain.Trade) error {
	j.calls++
	return assert.AnError
}

func TestJournalFailureDoesNotBlockTrade(t *testing.T) {
	starting := domain.Account{Quote: decimal.NewFromInt(1000), Base: decimal.Zero}
	j := &failingJournal{}
	l, err := New(testPair, starting, defaultParams(), j, zap.NewNop())
	require.NoError(t, err)

	trade, err := l.Apply(buy(), at(t, "50000"))
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, 1, j.calls)
	assert.Equal(t, "900", l.Account().Quote.String())
}

func TestNewValidation(t *testing.T) {
	starting := domain.Account{Quote: decimal.NewFromInt(100), Base: decimal.Zero}

	_, err := New(testPair, domain.Account{Quote: decimal.NewFromInt(-1)}, defaultParams(), nil, nil)
	assert.Error(t, err)

	badFraction := defaultParams()
	badFraction.BuyFraction = decimal.NewFromInt(2)
	_, err = New(testPair, starting, badFraction, nil, nil)
	assert.Error(t, err)

	badFee := defaultParams()
	badFee.FeePercent = decimal.NewFromInt(-1)
	_, err = New(testPair, starting, badFee, nil, nil)
	assert.Error(t, err)
}
