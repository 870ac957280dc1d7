package service

import (
	"context"
	"time"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
)

// Notifier hands a booking event to the mail system. The engine never makes
// a booking outcome depend on it.
type Notifier interface {
	Notify(ctx context.Context, ev queue.BookingEvent) error
}

func bookingEvent(kind queue.EventKind, b *model.Booking, manageURL string, at time.Time) queue.BookingEvent {
	ev := queue.BookingEvent{
		Kind:       kind,
		BookingID:  b.ID,
		Name:       b.Name,
		Email:      b.Email,
		Phone:      b.Phone,
		Date:       b.Date,
		Time:       b.Time,
		Session:    string(b.Session),
		Guests:     b.Guests,
		Requests:   b.Requests,
		ManageURL:  manageURL,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if b.Token != nil {
		ev.TokenExpiresAt = b.Token.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return ev
}

// dispatch sends ev with its own deadline, detached from the request so a
// client disconnect does not drop the mail. Failures are only logged.
func (s *Service) dispatch(ctx context.Context, ev queue.BookingEvent) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.log.Warn("booking notification failed",
			"kind", ev.Kind, "booking_id", ev.BookingID, "err", err)
		return
	}
	s.log.Debug("booking notification dispatched", "kind", ev.Kind, "booking_id", ev.BookingID)
}
