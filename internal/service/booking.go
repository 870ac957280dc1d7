// Package service implements the reservation engine: opening-hours checks,
// administrator slot blocks, per-session capacity and the token-gated
// booking lifecycle. HTTP concerns live in internal/handler; persistence is
// reached through the interfaces in store.go.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// Options tunes a Service. Zero values pick sensible defaults.
type Options struct {
	// ManageURL is the self-service page. The token is appended as the
	// "token" query parameter.
	ManageURL     string
	Now           func() time.Time
	Logger        *slog.Logger
	NotifyTimeout time.Duration
}

// Confirmation is the result of a successful create. Token is the raw edit
// token; it is not stored and cannot be recovered later.
type Confirmation struct {
	Booking   model.Booking
	Token     string
	ManageURL string
}

// SlotAvailability summarises one session of a date.
type SlotAvailability struct {
	Session   schedule.Session `json:"session"`
	Offered   bool             `json:"offered"`
	Blocked   bool             `json:"blocked"`
	Capacity  int              `json:"capacity"`
	Remaining int              `json:"remaining"`
	Times     []string         `json:"times"`
}

// Service runs the booking lifecycle. It is safe for concurrent use; all
// shared state lives in the stores.
type Service struct {
	bookings      BookingStore
	blocks        *SlotRegistry
	ledger        CapacityLedger
	tokens        *TokenIssuer
	notifier      Notifier
	log           *slog.Logger
	now           func() time.Time
	manageURL     string
	notifyTimeout time.Duration
}

// New wires a Service. notifier may be nil to disable mail.
func New(bookings BookingStore, blocks BlockStore, notifier Notifier, opts Options) *Service {
	if bookings == nil || blocks == nil {
		panic("nil store passed to service.New")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	return &Service{
		bookings:      bookings,
		blocks:        NewSlotRegistry(blocks),
		ledger:        NewCapacityLedger(),
		tokens:        NewTokenIssuer(bookings, opts.Now),
		notifier:      notifier,
		log:           opts.Logger,
		now:           opts.Now,
		manageURL:     opts.ManageURL,
		notifyTimeout: opts.NotifyTimeout,
	}
}

// Create validates and stores a new pending booking, then notifies the
// customer and the venue.
func (s *Service) Create(ctx context.Context, in BookingInput) (*Confirmation, error) {
	who, req, err := in.validate()
	if err != nil {
		return nil, err
	}
	session, err := s.checkSlot(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, tok, err := s.tokens.Issue()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	b := &model.Booking{
		ID:        uuid.NewString(),
		Name:      who.name,
		Email:     who.email,
		Phone:     who.phone,
		Date:      req.dateStr,
		Time:      req.time,
		Session:   session,
		Guests:    req.guests,
		Requests:  req.requests,
		Status:    model.StatusPending,
		Token:     &tok,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.bookings.WithSlot(ctx, b.Date, session, func(tx SlotTx) error {
		if err := s.ledger.Reserve(ctx, tx, b.Date, session, b.Guests, ""); err != nil {
			return err
		}
		return tx.Insert(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking created",
		"booking_id", b.ID, "date", b.Date, "session", session, "guests", b.Guests)

	link := s.linkFor(raw)
	s.dispatch(ctx, bookingEvent(queue.BookingCreated, b, link, now))
	return &Confirmation{Booking: *b, Token: raw, ManageURL: link}, nil
}

// Lookup returns the booking behind a self-service token for display by the
// edit and cancel pages.
func (s *Service) Lookup(ctx context.Context, token string) (*model.Booking, error) {
	return s.resolveActive(ctx, token)
}

// Edit changes date, time, party size and requests of a pending booking.
// Requests left out of the input keep their stored value. The booking's own guests do not count against the new slot. The token and
// its expiry are left as they are.
func (s *Service) Edit(ctx context.Context, token string, in EditInput) (*model.Booking, error) {
	cur, err := s.resolveActive(ctx, token)
	if err != nil {
		return nil, err
	}
	req, err := in.validate()
	if err != nil {
		return nil, err
	}
	session, err := s.checkSlot(ctx, req)
	if err != nil {
		return nil, err
	}

	next := *cur
	next.Date = req.dateStr
	next.Time = req.time
	next.Session = session
	next.Guests = req.guests
	if !req.keepRequests {
		next.Requests = req.requests
	}
	next.UpdatedAt = s.now().UTC()

	err = s.bookings.WithSlot(ctx, next.Date, session, func(tx SlotTx) error {
		if err := s.ledger.Reserve(ctx, tx, next.Date, session, next.Guests, next.ID); err != nil {
			return err
		}
		return tx.UpdateDetails(ctx, &next)
	})
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			// cancelled between lookup and update; the token is gone
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	s.log.Info("booking updated",
		"booking_id", next.ID, "date", next.Date, "session", session, "guests", next.Guests)

	s.dispatch(ctx, bookingEvent(queue.BookingUpdated, &next, s.linkFor(token), next.UpdatedAt))
	return &next, nil
}

// Cancel moves a pending booking to cancelled and clears its token, so the
// same link reports ErrTokenInvalid afterwards.
func (s *Service) Cancel(ctx context.Context, token string) (*model.Booking, error) {
	b, err := s.resolveActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.Cancel(ctx, b.ID); err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	b.Cancel()
	b.UpdatedAt = s.now().UTC()
	s.log.Info("booking cancelled", "booking_id", b.ID, "date", b.Date, "session", b.Session)

	s.dispatch(ctx, bookingEvent(queue.BookingCancelled, b, "", b.UpdatedAt))
	return b, nil
}

// ListBookings is the administrative listing.
func (s *Service) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	if f.Date != "" {
		if _, err := schedule.ParseDate(f.Date); err != nil {
			return nil, &ValidationError{Fields: []FieldError{{Field: "date", Message: "date must be a valid YYYY-MM-DD date"}}}
		}
	}
	switch f.Status {
	case "", model.StatusPending, model.StatusCancelled:
	default:
		return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "status must be pending or cancelled"}}}
	}
	out, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// Availability reports, per session, whether the date offers it, whether it
// is blocked and how many seats remain.
func (s *Service) Availability(ctx context.Context, date string) ([]SlotAvailability, error) {
	date = strings.TrimSpace(date)
	d, err := schedule.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "date", Message: "date must be a valid YYYY-MM-DD date"}}}
	}
	out := make([]SlotAvailability, 0, 2)
	for _, sess := range []schedule.Session{schedule.Morning, schedule.Evening} {
		a := SlotAvailability{Session: sess, Capacity: s.ledger.Ceiling, Times: schedule.SlotsFor(d, sess)}
		a.Offered = len(a.Times) > 0
		if a.Offered {
			if a.Blocked, err = s.blocks.IsBlocked(ctx, date, sess); err != nil {
				return nil, err
			}
			rem, err := s.ledger.Remaining(ctx, s.bookings, date, sess, "")
			if err != nil {
				return nil, err
			}
			a.Remaining = max(rem, 0)
		}
		if a.Blocked {
			a.Remaining = 0
		}
		out = append(out, a)
	}
	return out, nil
}

// BlockSlot, UnblockSlot and ListBlocked expose the registry to the admin
// API. Callers must have checked the admin role already.
func (s *Service) BlockSlot(ctx context.Context, date, session, reason string, actor uint64) (*model.BlockedSlot, error) {
	b, err := s.blocks.Block(ctx, date, session, reason, actor)
	if err != nil {
		return nil, err
	}
	s.log.Info("slot blocked", "block_id", b.ID, "date", b.Date, "session", b.Session, "actor", actor)
	return b, nil
}

func (s *Service) UnblockSlot(ctx context.Context, id uint64) error {
	if err := s.blocks.Unblock(ctx, id); err != nil {
		return err
	}
	s.log.Info("slot unblocked", "block_id", id)
	return nil
}

func (s *Service) ListBlocked(ctx context.Context) ([]model.BlockedSlot, error) {
	return s.blocks.List(ctx)
}

// checkSlot applies the opening schedule, then administrator blocks, and
// returns the derived session. Capacity is checked later, under the slot
// lock.
func (s *Service) checkSlot(ctx context.Context, req slotRequest) (schedule.Session, error) {
	if !schedule.IsOpeningHours(req.date, req.time) {
		return "", ErrSlotClosed
	}
	session, err := schedule.ClassifySession(req.time)
	if err != nil {
		return "", ErrSlotClosed
	}
	blocked, err := s.blocks.IsBlocked(ctx, req.dateStr, session)
	if err != nil {
		return "", err
	}
	if blocked {
		return "", ErrSlotBlocked
	}
	return session, nil
}

// resolveActive resolves a token, checks its expiry and then the booking
// status, in that order.
func (s *Service) resolveActive(ctx context.Context, token string) (*model.Booking, error) {
	b, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Validate(b); err != nil {
		return nil, err
	}
	if b.Status == model.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	return b, nil
}

func (s *Service) linkFor(token string) string {
	if s.manageURL == "" || token == "" {
		return ""
	}
	u, err := url.Parse(s.manageURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", strings.ToLower(strings.TrimSpace(token)))
	u.RawQuery = q.Encode()
	return u.String()
}
