package executor

import (
	"errors"
	"fmt"

	"github.com/hetulpatel/spreadarb/internal/venues"
)

var (
	ErrVenueNotFound = errors.New("venue not found")
	ErrInvalidAmount = errors.New("invalid trade amount")
)

// BuyFailedError means the buy leg failed and no sell was attempted.
type BuyFailedError struct {
	Venue venues.VenueID
	Err   error
}

func (e *BuyFailedError) Error() string {
	return fmt.Sprintf("buy on %s failed: %v", e.Venue, e.Err)
}

func (e *BuyFailedError) Unwrap() error { return e.Err }

// SellFailedError means the buy leg was committed but the sell leg failed,
// leaving unhedged inventory on BuyVenue.
type SellFailedError struct {
	BuyVenue  venues.VenueID
	SellVenue venues.VenueID
	Amount    float64
	Err       error
}

func (e *SellFailedError) Error() string {
	return fmt.Sprintf("sell on %s failed after buy of %g on %s (unhedged): %v", e.SellVenue, e.Amount, e.BuyVenue, e.Err)
}

func (e *SellFailedError) Unwrap() error { return e.Err }

// Unhedged always reports true; it lets callers test for the condition
// without depending on the concrete type.
func (e *SellFailedError) Unhedged() bool { return true }

// IsUnhedged reports whether err leaves inventory open.
func IsUnhedged(err error) bool {
	var u interface{ Unhedged() bool }
	return errors.As(err, &u) && u.Unhedged()
}
