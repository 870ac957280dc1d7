package service

import (
	"context"
	"errors"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// Store implementations report these so the engine can tell outcomes apart.
var (
	ErrStoreNotFound = errors.New("record not found")
	ErrStoreConflict = errors.New("record already exists")
)

// GuestCounter sums guests of non-cancelled bookings in a slot, leaving out
// excludeID when it is not empty.
type GuestCounter interface {
	SumGuests(ctx context.Context, date string, session schedule.Session, excludeID string) (int, error)
}

// SlotTx is the view of the store inside a slot-scoped transaction. Reads and
// writes made through it commit or roll back together.
type SlotTx interface {
	GuestCounter
	Insert(ctx context.Context, b *model.Booking) error
	// UpdateDetails rewrites date, time, session, guests and requests of a
	// pending booking. It returns ErrStoreNotFound when the booking is no
	// longer pending.
	UpdateDetails(ctx context.Context, b *model.Booking) error
}

// BookingFilter narrows administrative listings. Zero values match all.
type BookingFilter struct {
	Date   string
	Status model.Status
}

// BookingStore persists bookings.
type BookingStore interface {
	GuestCounter
	// WithSlot runs fn in one transaction that holds exclusive access to the
	// (date, session) slot, so a capacity check and the write that follows it
	// cannot interleave with another writer on the same slot.
	WithSlot(ctx context.Context, date string, session schedule.Session, fn func(tx SlotTx) error) error
	// FindByTokenHash returns the booking whose current edit token hashes to
	// hash, or ErrStoreNotFound.
	FindByTokenHash(ctx context.Context, hash string) (*model.Booking, error)
	// Cancel sets a pending booking to cancelled and clears its token. It
	// returns ErrStoreNotFound when no pending booking has that id.
	Cancel(ctx context.Context, id string) error
	List(ctx context.Context, f BookingFilter) ([]model.Booking, error)
}

// BlockStore persists administrator slot blocks.
type BlockStore interface {
	// Create inserts the block and fills ID and CreatedAt. A second block for
	// the same slot yields ErrStoreConflict.
	Create(ctx context.Context, b *model.BlockedSlot) error
	// Delete removes a block or returns ErrStoreNotFound.
	Delete(ctx context.Context, id uint64) error
	Exists(ctx context.Context, date string, session schedule.Session) (bool, error)
	// List returns all blocks by date ascending, morning first.
	List(ctx context.Context) ([]model.BlockedSlot, error)
}
