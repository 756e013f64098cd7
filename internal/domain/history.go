package domain

import "github.com/shopspring/decimal"

// PriceHistory is a bounded ring buffer of price points. Once the capacity
// is reached the oldest observation is overwritten, keeping prompt context
// and memory fixed-size for arbitrarily long runs.
type PriceHistory struct {
	points []PricePoint
	start  int
	size   int
}

// NewPriceHistory creates a history holding at most capacity points.
func NewPriceHistory(capacity int) *PriceHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &PriceHistory{points: make([]PricePoint, capacity)}
}

// Append records a new observation, evicting the oldest when full.
func (h *PriceHistory) Append(p PricePoint) {
	idx := (h.start + h.size) % len(h.points)
	h.points[idx] = p
	if h.size < len(h.points) {
		h.size++
	} else {
		h.start = (h.start + 1) % len(h.points)
	}
}

// Len returns the number of retained points.
func (h *PriceHistory) Len() int {
	return h.size
}

// Last returns the most recent point.
func (h *PriceHistory) Last() (PricePoint, bool) {
	if h.size == 0 {
		return PricePoint{}, false
	}
	idx := (h.start + h.size - 1) % len(h.points)
	return h.points[idx], true
}

// Window returns up to n most recent points in chronological order.
// The returned slice is a copy.
func (h *PriceHistory) Window(n int) []PricePoint {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}
	out := make([]PricePoint, 0, n)
	for i := h.size - n; i < h.size; i++ {
		out = append(out, h.points[(h.start+i)%len(h.points)])
	}
	return out
}

// Closes returns the prices of up to n most recent points in chronological order.
func (h *PriceHistory) Closes(n int) []decimal.Decimal {
	window := h.Window(n)
	out := make([]decimal.Decimal, 0, len(window))
	for _, p := range window {
		out = append(out, p.Price)
	}
	return out
}
