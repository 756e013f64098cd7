// Package console renders the per-cycle report and the final run summary
// as color-coded terminal output.
package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/demidenkov/sibyl/internal/domain"
	"github.com/demidenkov/sibyl/internal/ledger"
)

var (
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")) // white
	buyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true) // green
	sellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	holdStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const dividerWidth = 50

// Reporter prints human-readable cycle reports for one trading pair.
// Output-only; nothing machine-parses these lines.
type Reporter struct {
	pair domain.Pair
}

// NewReporter creates a reporter for the pair.
func NewReporter(pair domain.Pair) *Reporter {
	return &Reporter{pair: pair}
}

func actionStyle(a domain.Action) lipgloss.Style {
	switch a {
	case domain.ActionBuy:
		return buyStyle
	case domain.ActionSell:
		return sellStyle
	default:
		return holdStyle
	}
}

func (r *Reporter) line(label, value string) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(label+":"), valueStyle.Render(value))
}

// Cycle prints the outcome of one completed cycle. trade is nil for Hold
// and rejected trades; rejection carries the reason then.
func (r *Reporter) Cycle(point domain.PricePoint, decision *domain.Decision, trade *domain.Trade, rejection string, account domain.Account, historyLen int) {
	var sb strings.Builder

	divider := dividerStyle.Render(strings.Repeat("=", dividerWidth))
	sb.WriteString(divider + "\n")
	sb.WriteString(r.line("Time", point.Time.Format("2006-01-02 15:04:05")) + "\n")
	sb.WriteString(r.line("Pair", r.pair.String()) + "\n")
	sb.WriteString(r.line("Price", fmt.Sprintf("%s %s", point.Price.StringFixed(2), r.pair.To)) + "\n")
	sb.WriteString(r.line("Balances", fmt.Sprintf("%s %s / %s %s",
		account.Quote.StringFixed(2), r.pair.To,
		account.Base.StringFixed(8), r.pair.From)) + "\n")
	sb.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render("Decision:"),
		actionStyle(decision.Action).Render(decision.Action.String())))
	sb.WriteString(r.line("Reasoning", decision.Reasoning) + "\n")

	switch {
	case trade != nil:
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Trade:"),
			actionStyle(trade.Action).Render(fmt.Sprintf("%s %s %s at %s",
				trade.Side, trade.Quantity.StringFixed(8), r.pair.From, trade.Price.StringFixed(2)))))
	case rejection != "":
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Trade:"),
			mutedStyle.Render("rejected: "+rejection)))
	default:
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("Trade:"),
			mutedStyle.Render("no trade executed")))
	}

	sb.WriteString(r.line("History", fmt.Sprintf("%d points", historyLen)) + "\n")
	sb.WriteString(divider + "\n")

	fmt.Print(sb.String())
}

// Skip prints a one-liner for a cycle abandoned before a decision.
func (r *Reporter) Skip(reason string) {
	fmt.Printf("%s %s\n",
		holdStyle.Render("cycle skipped:"),
		mutedStyle.Render(reason))
}

// Summary prints the final report on shutdown.
func (r *Reporter) Summary(s ledger.Summary, lastPrice decimal.Decimal, uptime time.Duration) {
	var sb strings.Builder

	divider := dividerStyle.Render(strings.Repeat("=", dividerWidth))
	sb.WriteString(divider + "\n")
	sb.WriteString(labelStyle.Render("Final summary") + "\n")
	sb.WriteString(r.line("Uptime", uptime.Round(time.Second).String()) + "\n")
	sb.WriteString(r.line("Ending balances", fmt.Sprintf("%s %s / %s %s",
		s.Account.Quote.StringFixed(2), r.pair.To,
		s.Account.Base.StringFixed(8), r.pair.From)) + "\n")
	sb.WriteString(r.line("Total trades", fmt.Sprintf("%d", s.TotalTrades)) + "\n")

	pnlStyle := buyStyle
	if s.PnL.IsNegative() {
		pnlStyle = sellStyle
	}
	if lastPrice.GreaterThan(decimal.Zero) {
		sb.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render(fmt.Sprintf("P&L at %s:", lastPrice.StringFixed(2))),
			pnlStyle.Render(s.PnL.StringFixed(2)+" "+r.pair.To)))
	} else {
		sb.WriteString(r.line("P&L", "no price observed this run") + "\n")
	}
	sb.WriteString(divider + "\n")

	fmt.Print(sb.String())
}
