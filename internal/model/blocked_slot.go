package model

import (
	"time"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// BlockedSlot is an administrator override that closes a whole (date,
// session) regardless of remaining capacity. At most one row exists per slot.
//
// Fields:
//
//	ID        – primary key identifier.
//	Date      – calendar date, YYYY-MM-DD.
//	Session   – morning or evening.
//	Reason    – optional note shown to staff.
//	CreatedBy – id of the admin user who created the block.
//	CreatedAt – creation timestamp.
type BlockedSlot struct {
	ID        uint64           // blocked_slots.id
	Date      string           // blocked_slots.slot_date
	Session   schedule.Session // blocked_slots.session
	Reason    string           // blocked_slots.reason (nullable)
	CreatedBy uint64           // blocked_slots.created_by
	CreatedAt time.Time        // blocked_slots.created_at
}
