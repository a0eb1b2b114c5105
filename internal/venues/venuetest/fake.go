// Package venuetest provides a scriptable venues.Client for tests.
package venuetest

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hetulpatel/spreadarb/internal/venues"
)

// Order is a submitted order as seen by a Fake.
type Order struct {
	Venue  venues.VenueID
	Pair   string
	Amount float64
}

// Journal records orders across several fakes in submission order.
type Journal struct {
	mu     sync.Mutex
	orders []Order
}

func (j *Journal) add(o Order) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.orders = append(j.orders, o)
}

func (j *Journal) Orders() []Order {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Order, len(j.orders))
	copy(out, j.orders)
	return out
}

// Fake is a venues.Client whose behaviour is set by its fields. Fields must
// not be changed once the fake is in use.
type Fake struct {
	ID       venues.VenueID
	Price    float64
	FetchErr error
	OrderErr error
	// FetchFn overrides Price/FetchErr when set.
	FetchFn func(ctx context.Context, pair string) (float64, error)
	Journal *Journal

	fetches atomic.Int64
	orders  atomic.Int64
}

func (f *Fake) Name() venues.VenueID {
	return f.ID
}

func (f *Fake) FetchPrice(ctx context.Context, pair string) (float64, error) {
	f.fetches.Add(1)
	if f.FetchFn != nil {
		return f.FetchFn(ctx, pair)
	}
	if f.FetchErr != nil {
		return 0, f.FetchErr
	}
	return f.Price, nil
}

func (f *Fake) SubmitOrder(ctx context.Context, pair string, signedAmount float64) error {
	f.orders.Add(1)
	if f.Journal != nil {
		f.Journal.add(Order{Venue: f.ID, Pair: pair, Amount: signedAmount})
	}
	return f.OrderErr
}

func (f *Fake) Fetches() int {
	return int(f.fetches.Load())
}

func (f *Fake) Orders() int {
	return int(f.orders.Load())
}
