// Package web serves a minimal dashboard: an HTML page plus SSE streams of
// balance snapshots and decision events read back from the persistent stores.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/demidenkov/sibyl/internal/domain"
)

const storePollInterval = 2 * time.Second

type snapshotReader interface {
	SnapshotsAfter(index uint64) ([]domain.BalanceSnapshotRecord, error)
}

type decisionReader interface {
	EventsAfter(index uint64) ([]domain.DecisionEventRecord, error)
}

type tradeReader interface {
	TradesAfter(index uint64) ([]domain.TradeRecord, error)
}

// Server exposes the dashboard page and three SSE streams.
type Server struct {
	addr      string
	snapshots snapshotReader
	decisions decisionReader
	trades    tradeReader
	logger    *zap.Logger
}

func NewServer(addr string, snapshots snapshotReader, decisions decisionReader, trades tradeReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, snapshots: snapshots, decisions: decisions, trades: trades, logger: logger}
}

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/balance/stream", s.handleBalanceStream)
	mux.HandleFunc("/decisions/stream", s.handleDecisionStream)
	mux.HandleFunc("/trades/stream", s.handleTradeStream)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "dashboard server failed")
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleBalanceStream(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, "balance", func(lastIndex uint64) ([]indexedPayload, error) {
		records, err := s.snapshots.SnapshotsAfter(lastIndex)
		if err != nil {
			return nil, err
		}
		out := make([]indexedPayload, 0, len(records))
		for _, record := range records {
			out = append(out, indexedPayload{index: record.Index, value: record.Snapshot})
		}
		return out, nil
	})
}

func (s *Server) handleDecisionStream(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, "decision", func(lastIndex uint64) ([]indexedPayload, error) {
		records, err := s.decisions.EventsAfter(lastIndex)
		if err != nil {
			return nil, err
		}
		out := make([]indexedPayload, 0, len(records))
		for _, record := range records {
			out = append(out, indexedPayload{index: record.Index, value: record.Event})
		}
		return out, nil
	})
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, "trade", func(lastIndex uint64) ([]indexedPayload, error) {
		records, err := s.trades.TradesAfter(lastIndex)
		if err != nil {
			return nil, err
		}
		out := make([]indexedPayload, 0, len(records))
		for _, record := range records {
			out = append(out, indexedPayload{index: record.Index, value: record.Trade})
		}
		return out, nil
	})
}

type indexedPayload struct {
	index uint64
	value any
}

// stream replays everything past lastIndex, then polls the store and pushes
// new records as SSE events. A comment heartbeat keeps proxies from closing
// idle connections.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, event string, fetch func(lastIndex uint64) ([]indexedPayload, error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	poll := time.NewTicker(storePollInterval)
	defer poll.Stop()

	lastIndex := uint64(0)
	send := func() error {
		payloads, err := fetch(lastIndex)
		if err != nil {
			return err
		}
		for _, p := range payloads {
			data, err := json.Marshal(p.value)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: %s\n", event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			lastIndex = p.index
		}
		return nil
	}

	if err := send(); err != nil {
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		s.logger.Error("sse initial load failed", zap.String("stream", event), zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-poll.C:
			if err := send(); err != nil {
				s.logger.Warn("sse poll failed", zap.String("stream", event), zap.Error(err))
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>sibyl</title>
  <style>
    body {
      margin: 0;
      padding: 2rem;
      background: #101418;
      color: #e6e6e6;
      font-family: 'JetBrains Mono', 'Menlo', monospace;
    }
    h1 { font-size: 1rem; letter-spacing: .3em; text-transform: uppercase; color: #7dd3fc; }
    .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 1.5rem; }
    .panel { border: 1px solid #2b3440; border-radius: 6px; padding: 1rem; background: #151b22; }
    .panel h2 { margin: 0 0 .8rem; font-size: .7rem; text-transform: uppercase; letter-spacing: .2em; color: #8b98a8; }
    #equity { font-size: 2rem; font-weight: 700; }
    #equity-meta { margin-top: .5rem; font-size: .75rem; color: #8b98a8; }
    .row { border-bottom: 1px dashed #2b3440; padding: .6rem 0; font-size: .75rem; }
    .row:last-child { border-bottom: none; }
    .action { font-weight: 700; margin-right: .6rem; }
    .action.Buy { color: #4ade80; }
    .action.Sell { color: #f87171; }
    .action.Hold { color: #facc15; }
    .time { color: #8b98a8; margin-right: .6rem; }
    .reasoning { display: block; margin-top: .25rem; color: #aab6c4; font-style: italic; }
    @media (max-width: 720px) { .grid { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <h1>sibyl</h1>
  <div class="grid">
    <div class="panel">
      <h2>Portfolio value</h2>
      <div id="equity">—</div>
      <div id="equity-meta">waiting for snapshots…</div>
    </div>
    <div class="panel">
      <h2>Decisions</h2>
      <div id="decisions"></div>
    </div>
    <div class="panel">
      <h2>Trades</h2>
      <div id="trades"></div>
    </div>
  </div>
<script>
const maxRows = 50;

function timeOf(ts) {
  const d = new Date(ts);
  return isNaN(d.getTime()) ? '' : d.toLocaleTimeString([], {hour12: false});
}

function connectBalances() {
  const src = new EventSource('/balance/stream');
  src.addEventListener('balance', (e) => {
    try {
      const snap = JSON.parse(e.data);
      document.getElementById('equity').textContent =
        (snap.total_quote || '—') + ' ' + (snap.pair || '').split('_')[1];
      document.getElementById('equity-meta').textContent =
        snap.pair + ' @ ' + snap.price + ' · base ' + snap.base + ' · quote ' + snap.quote + ' · ' + timeOf(snap.ts);
    } catch (err) { console.error(err); }
  });
  src.addEventListener('error', () => { src.close(); setTimeout(connectBalances, 2000); });
}

function connectDecisions() {
  const container = document.getElementById('decisions');
  const src = new EventSource('/decisions/stream');
  src.addEventListener('decision', (e) => {
    try {
      const d = JSON.parse(e.data);
      const row = document.createElement('div');
      row.className = 'row';
      row.innerHTML = '<span class="time">' + timeOf(d.ts) + '</span>' +
        '<span class="action ' + d.action + '">' + d.action + '</span>' +
        '<span>@ ' + d.price + '</span>' +
        '<span class="reasoning"></span>';
      row.querySelector('.reasoning').textContent = d.reasoning || '';
      container.insertBefore(row, container.firstChild);
      while (container.children.length > maxRows) container.removeChild(container.lastChild);
    } catch (err) { console.error(err); }
  });
  src.addEventListener('error', () => { src.close(); setTimeout(connectDecisions, 2000); });
}

function connectTrades() {
  const container = document.getElementById('trades');
  const src = new EventSource('/trades/stream');
  src.addEventListener('trade', (e) => {
    try {
      const t = JSON.parse(e.data);
      const row = document.createElement('div');
      row.className = 'row';
      row.innerHTML = '<span class="time">' + timeOf(t.ts) + '</span>' +
        '<span class="action ' + t.side + '">' + t.side + '</span>' +
        '<span>' + t.quantity + ' @ ' + t.price + ' (fee ' + t.fee + ')</span>';
      container.insertBefore(row, container.firstChild);
      while (container.children.length > maxRows) container.removeChild(container.lastChild);
    } catch (err) { console.error(err); }
  });
  src.addEventListener('error', () => { src.close(); setTimeout(connectTrades, 2000); });
}

connectBalances();
connectDecisions();
connectTrades();
</script>
</body>
</html>`
