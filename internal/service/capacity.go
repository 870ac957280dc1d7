package service

import (
	"context"
	"fmt"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// SessionCapacity is the guest ceiling of every (date, session).
const SessionCapacity = 30

// CapacityLedger enforces the per-slot guest ceiling. It keeps no state: the
// aggregate is re-read from the store on every call.
type CapacityLedger struct {
	Ceiling int
}

// NewCapacityLedger returns a ledger with the standard ceiling.
func NewCapacityLedger() CapacityLedger {
	return CapacityLedger{Ceiling: SessionCapacity}
}

// Remaining is the ceiling minus guests already booked in the slot. It can
// be negative if the slot was overfilled.
func (l CapacityLedger) Remaining(ctx context.Context, c GuestCounter, date string, session schedule.Session, excludeID string) (int, error) {
	sum, err := c.SumGuests(ctx, date, session, excludeID)
	if err != nil {
		return 0, fmt.Errorf("sum guests: %w", err)
	}
	return l.Ceiling - sum, nil
}

// Reserve checks that guests fit in the slot. The comparison uses the raw
// remaining value; the error reports it clamped at zero.
func (l CapacityLedger) Reserve(ctx context.Context, c GuestCounter, date string, session schedule.Session, guests int, excludeID string) error {
	rem, err := l.Remaining(ctx, c, date, session, excludeID)
	if err != nil {
		return err
	}
	if guests > rem {
		return &CapacityExceededError{Available: max(rem, 0)}
	}
	return nil
}
