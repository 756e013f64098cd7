// Package trades journals executed trades in an append-only WAL.
// Insertion order matches execution order.
package trades

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/demidenkov/sibyl/internal/domain"
)

const (
	segmentLimit = 100
	maxSegments  = 10

	tradeKeyPrefix = "trade_"
)

// WALStore persists executed trades in a WAL. It satisfies ledger.Journal.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed trade journal under dir.
func NewWALStore(dir string) (*WALStore, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "trade_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Record writes the executed trade to WAL.
func (s *WALStore) Record(trade domain.Trade) error {
	if s == nil || s.wal == nil {
		return errors.New("trade store is not initialized")
	}
	if trade.ID == "" {
		return errors.New("trade ID is required")
	}

	payload, err := json.Marshal(trade)
	if err != nil {
		return errors.Wrap(err, "marshal trade")
	}

	key := fmt.Sprintf("%s%s", tradeKeyPrefix, trade.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// TradesAfter returns all trades written after the provided WAL index.
func (s *WALStore) TradesAfter(index uint64) ([]domain.TradeRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.TradeRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, tradeKeyPrefix) {
			continue
		}

		var trade domain.Trade
		if err := json.Unmarshal(payload, &trade); err != nil {
			return nil, errors.Wrap(err, "decode trade")
		}
		records = append(records, domain.TradeRecord{
			Index: idx,
			Trade: trade,
		})
	}

	return records, nil
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("trade store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
