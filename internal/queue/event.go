// Package queue carries booking notifications over RabbitMQ: the event
// payload, a publisher used by the booking engine and a reconnecting consumer
// that hands events to the mail dispatcher.
package queue

// EventKind names what happened to a booking.
type EventKind string

const (
	BookingCreated   EventKind = "booking.created"
	BookingUpdated   EventKind = "booking.updated"
	BookingCancelled EventKind = "booking.cancelled"
)

// BookingEvent is published after a booking is created, edited or
// cancelled. It carries everything the mail templates need so the consumer
// never queries the database.
type BookingEvent struct {
	Kind           EventKind `json:"kind"`
	BookingID      string    `json:"booking_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Session        string    `json:"session"`
	Guests         int       `json:"guests"`
	Requests       string    `json:"requests,omitempty"`
	ManageURL      string    `json:"manage_url,omitempty"`
	TokenExpiresAt string    `json:"token_expires_at,omitempty"`
	OccurredAt     string    `json:"occurred_at"`
}
