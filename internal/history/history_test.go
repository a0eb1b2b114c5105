package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/spreadarb/internal/venues"
)

func obs(venue string, price float64) venues.Observation {
	return venues.Observation{Venue: venues.VenueID(venue), Pair: "ETH/USDC", Price: price}
}

func TestConcurrentAppendLosesNothing(t *testing.T) {
	const writers = 200
	h := New()

	var start sync.WaitGroup
	start.Add(1)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			h.Append(obs(fmt.Sprintf("V%d", i), float64(1000+i)))
		}(i)
	}
	start.Done()
	wg.Wait()

	require.Equal(t, writers, h.Len())
	seen := make(map[venues.VenueID]bool, writers)
	for _, o := range h.Snapshot() {
		assert.False(t, seen[o.Venue], "duplicate entry for %s", o.Venue)
		seen[o.Venue] = true
	}
	assert.Len(t, seen, writers)
}

func TestAppendPreservesArrivalOrder(t *testing.T) {
	h := New()
	h.Append(obs("B", 2))
	h.Append(obs("A", 1), obs("C", 3))

	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []venues.VenueID{"B", "A", "C"}, []venues.VenueID{snap[0].Venue, snap[1].Venue, snap[2].Venue})
}

func TestSnapshotIsACopy(t *testing.T) {
	h := New()
	h.Append(obs("A", 1))
	snap := h.Snapshot()
	snap[0].Price = 99
	assert.Equal(t, 1.0, h.Snapshot()[0].Price)
}

func TestUnboundedByDefault(t *testing.T) {
	h := New()
	for i := 0; i < 10000; i++ {
		h.Append(obs("A", float64(i+1)))
	}
	assert.Equal(t, 10000, h.Len())
	assert.Zero(t, h.Dropped())
}

func TestMaxEntriesEvictsOldest(t *testing.T) {
	h := New(WithMaxEntries(3))
	for i := 1; i <= 5; i++ {
		h.Append(obs("A", float64(i)))
	}
	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 3.0, snap[0].Price)
	assert.Equal(t, 5.0, snap[2].Price)
	assert.Equal(t, uint64(2), h.Dropped())
}

func TestLatest(t *testing.T) {
	h := New()
	_, ok := h.Latest("A")
	assert.False(t, ok)

	h.Append(obs("A", 1), obs("B", 2), obs("A", 3))
	got, ok := h.Latest("A")
	require.True(t, ok)
	assert.Equal(t, 3.0, got.Price)
}
