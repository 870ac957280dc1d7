package model

import (
	"time"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// Status is the lifecycle state of a booking. Pending is the only active
// state; cancellation is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// EditToken is the self-service credential attached to a pending booking.
// Only the SHA-256 hash of the raw token is kept.
type EditToken struct {
	Hash      string    // bookings.edit_token_hash
	ExpiresAt time.Time // bookings.token_expires_at
}

// Expired reports whether the token is past its expiry at now.
func (t EditToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Booking is a table reservation for one (date, session) slot.
//
// Token is non-nil exactly while Status is pending. Use Cancel to move to the
// terminal state so both change together.
type Booking struct {
	ID        string           // bookings.id (UUID)
	Name      string           // bookings.name
	Email     string           // bookings.email
	Phone     string           // bookings.phone
	Date      string           // bookings.booking_date, YYYY-MM-DD
	Time      string           // bookings.booking_time, HH:MM
	Session   schedule.Session // bookings.session, derived from Time
	Guests    int              // bookings.guests
	Requests  string           // bookings.requests (empty when none)
	Status    Status           // bookings.status
	Token     *EditToken       // bookings.edit_token_hash + token_expires_at
	CreatedAt time.Time        // bookings.created_at
	UpdatedAt time.Time        // bookings.updated_at
}

// Cancel marks the booking cancelled and drops its edit token.
func (b *Booking) Cancel() {
	b.Status = StatusCancelled
	b.Token = nil
}

// Active reports whether the booking still counts against capacity.
func (b *Booking) Active() bool { return b.Status != StatusCancelled }
