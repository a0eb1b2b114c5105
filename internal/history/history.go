// Package history keeps the in-memory log of observed venue prices.
package history

import (
	"sync"

	"github.com/hetulpatel/spreadarb/internal/venues"
)

// PriceHistory is an append-only log of observations shared by the concurrent
// fetch tasks of a cycle. Insertion order is arrival order.
type PriceHistory struct {
	mu         sync.RWMutex
	entries    []venues.Observation
	maxEntries int
	dropped    uint64
}

type Option func(*PriceHistory)

// WithMaxEntries bounds retention to the newest n observations. n <= 0 keeps
// everything.
func WithMaxEntries(n int) Option {
	return func(h *PriceHistory) {
		if n > 0 {
			h.maxEntries = n
		}
	}
}

func New(opts ...Option) *PriceHistory {
	h := &PriceHistory{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Append adds observations atomically with respect to other Append calls.
func (h *PriceHistory) Append(obs ...venues.Observation) {
	if len(obs) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, obs...)
	if h.maxEntries > 0 && len(h.entries) > h.maxEntries {
		excess := len(h.entries) - h.maxEntries
		h.dropped += uint64(excess)
		// copy down so the backing array does not keep growing
		n := copy(h.entries, h.entries[excess:])
		clear(h.entries[n:])
		h.entries = h.entries[:n]
	}
}

// Snapshot returns a copy of the retained observations.
func (h *PriceHistory) Snapshot() []venues.Observation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]venues.Observation, len(h.entries))
	copy(out, h.entries)
	return out
}

// Latest returns the most recent observation for venue, if any is retained.
func (h *PriceHistory) Latest(venue venues.VenueID) (venues.Observation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].Venue == venue {
			return h.entries[i], true
		}
	}
	return venues.Observation{}, false
}

func (h *PriceHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Dropped reports how many observations were evicted by the retention bound.
func (h *PriceHistory) Dropped() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}
