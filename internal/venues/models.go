package venues

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// VenueID identifies a configured trading venue.
type VenueID string

// Client is implemented by venue-specific clients (simulated, HTTP, ...).
// A positive signedAmount submits a buy, a negative one a sell.
type Client interface {
	Name() VenueID
	FetchPrice(ctx context.Context, pair string) (float64, error)
	SubmitOrder(ctx context.Context, pair string, signedAmount float64) error
}

// Observation is a single successfully fetched price.
type Observation struct {
	Venue      VenueID   `json:"venue"`
	Pair       string    `json:"pair"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

var ErrDuplicateVenue = errors.New("duplicate venue id")

// Set is an ordered, read-only collection of clients keyed by VenueID.
// Iteration order is the order the clients were passed to NewSet.
type Set struct {
	order []Client
	byID  map[VenueID]Client
}

func NewSet(clients ...Client) (*Set, error) {
	s := &Set{byID: make(map[VenueID]Client, len(clients))}
	for _, c := range clients {
		if c == nil {
			continue
		}
		id := c.Name()
		if _, ok := s.byID[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVenue, id)
		}
		s.byID[id] = c
		s.order = append(s.order, c)
	}
	return s, nil
}

// Get resolves a venue id.
func (s *Set) Get(id VenueID) (Client, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.byID[id]
	return c, ok
}

// All returns the clients in configured order. The slice must not be modified.
func (s *Set) All() []Client {
	if s == nil {
		return nil
	}
	return s.order
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
