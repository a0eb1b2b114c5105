package arb

import (
	"github.com/hetulpatel/spreadarb/internal/venues"
)

// DefaultThreshold is the minimum relative spread (0.5%) treated as profitable
// after fees.
const DefaultThreshold = 0.005

// Signal describes a cross-venue spread worth trading: buy on BuyVenue at
// ReferencePrice, sell on SellVenue.
type Signal struct {
	BuyVenue       venues.VenueID `json:"buy_venue"`
	SellVenue      venues.VenueID `json:"sell_venue"`
	ReferencePrice float64        `json:"reference_price"`
	SellPrice      float64        `json:"sell_price"`
	Margin         float64        `json:"margin"`
}

// Detect scans observations once for the cheapest and most expensive venue.
// Ties keep the first observation in input order. A signal is returned only
// when (max-min)/min strictly exceeds threshold.
func Detect(observations []venues.Observation, threshold float64) (*Signal, bool) {
	if distinctVenues(observations) < 2 {
		return nil, false
	}

	minObs, maxObs := observations[0], observations[0]
	for _, obs := range observations[1:] {
		if obs.Price < minObs.Price {
			minObs = obs
		}
		if obs.Price > maxObs.Price {
			maxObs = obs
		}
	}

	if minObs.Venue == maxObs.Venue || minObs.Price <= 0 || !(minObs.Price < maxObs.Price) {
		return nil, false
	}

	margin := Margin(minObs.Price, maxObs.Price)
	if !(margin > threshold) {
		return nil, false
	}
	return &Signal{
		BuyVenue:       minObs.Venue,
		SellVenue:      maxObs.Venue,
		ReferencePrice: minObs.Price,
		SellPrice:      maxObs.Price,
		Margin:         margin,
	}, true
}

// Margin is the spread between low and high relative to low.
func Margin(low, high float64) float64 {
	return (high - low) / low
}

func distinctVenues(observations []venues.Observation) int {
	seen := make(map[venues.VenueID]struct{}, len(observations))
	for _, obs := range observations {
		seen[obs.Venue] = struct{}{}
		if len(seen) >= 2 {
			break
		}
	}
	return len(seen)
}
