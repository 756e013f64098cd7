package domain

import "time"

// BalanceSnapshot is the per-cycle wallet state persisted for streaming.
type BalanceSnapshot struct {
	Timestamp  time.Time `json:"ts"`
	Pair       string    `json:"pair"`
	Base       string    `json:"base"`
	Quote      string    `json:"quote"`
	Price      string    `json:"price,omitempty"`
	TotalQuote string    `json:"total_quote,omitempty"`
}

// BalanceSnapshotRecord bundles a snapshot with its store index.
type BalanceSnapshotRecord struct {
	Index    uint64
	Snapshot BalanceSnapshot
}
