// Package notify turns booking events into mail. The booking engine calls
// it directly, or the queue consumer calls it for events read from RabbitMQ.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/mailer"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
)

// Dispatcher renders one message per recipient and hands it to a mailer.
// New bookings go to the customer and to the venue inbox; edits and
// cancellations only to the customer.
type Dispatcher struct {
	sender     mailer.Sender
	venueName  string
	venueEmail string
	log        *slog.Logger
}

func NewDispatcher(sender mailer.Sender, venueName, venueEmail string, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender:     sender,
		venueName:  venueName,
		venueEmail: strings.TrimSpace(venueEmail),
		log:        log,
	}
}

// Notify sends every mail for ev. A failure for one recipient does not stop
// the others; all failures are returned joined.
func (d *Dispatcher) Notify(ctx context.Context, ev queue.BookingEvent) error {
	msgs, err := d.Messages(ev)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range msgs {
		if err := d.sender.Send(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("send %s to %s: %w", ev.Kind, strings.Join(m.To, ","), err))
			continue
		}
		d.log.Debug("mail sent", "kind", ev.Kind, "booking_id", ev.BookingID, "to", m.To)
	}
	return errors.Join(errs...)
}

// Messages renders the mails for ev without sending them.
func (d *Dispatcher) Messages(ev queue.BookingEvent) ([]mailer.Message, error) {
	v := view{Venue: d.venueName, BookingEvent: ev}
	switch ev.Kind {
	case queue.BookingCreated:
		text, err := render(tmplCustomerCreatedText, v)
		if err != nil {
			return nil, err
		}
		html, err := render(tmplCustomerCreatedHTML, v)
		if err != nil {
			return nil, err
		}
		out := []mailer.Message{{
			To:       []string{ev.Email},
			ReplyTo:  d.venueEmail,
			Subject:  subject(ev.Kind, v, false),
			TextBody: text,
			HTMLBody: html,
		}}
		if d.venueEmail != "" {
			vt, err := render(tmplVenueCreatedText, v)
			if err != nil {
				return nil, err
			}
			out = append(out, mailer.Message{
				To:       []string{d.venueEmail},
				ReplyTo:  ev.Email,
				Subject:  subject(ev.Kind, v, true),
				TextBody: vt,
			})
		}
		return out, nil
	case queue.BookingUpdated:
		text, err := render(tmplCustomerUpdatedText, v)
		if err != nil {
			return nil, err
		}
		return []mailer.Message{{To: []string{ev.Email}, ReplyTo: d.venueEmail, Subject: subject(ev.Kind, v, false), TextBody: text}}, nil
	case queue.BookingCancelled:
		text, err := render(tmplCustomerCancelText, v)
		if err != nil {
			return nil, err
		}
		return []mailer.Message{{To: []string{ev.Email}, ReplyTo: d.venueEmail, Subject: subject(ev.Kind, v, false), TextBody: text}}, nil
	}
	return nil, fmt.Errorf("unknown booking event kind %q", ev.Kind)
}
