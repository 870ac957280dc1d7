// Package schedule holds the venue's opening policy: which wall-clock times can
// be booked, how a time maps to a service session, and the Sunday-evening
// closure. Everything here is pure and works on the venue's local calendar;
// dates carry no time zone.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Session is one of the two daily service windows. Capacity is accounted per
// (date, session).
type Session string

const (
	Morning Session = "morning"
	Evening Session = "evening"
)

// EveningStartHour is the first hour that belongs to the evening session.
const EveningStartHour = 17

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// SlotTimes lists every bookable time of day. Morning slots run every half
// hour from 10:00 to 16:00, evening slots from 19:30 to 23:30.
var SlotTimes = []string{
	"10:00", "10:30", "11:00", "11:30", "12:00", "12:30", "13:00",
	"13:30", "14:00", "14:30", "15:00", "15:30", "16:00",
	"19:30", "20:00", "20:30", "21:00", "21:30", "22:00", "22:30", "23:00", "23:30",
}

var (
	ErrInvalidTime    = errors.New("time must be HH:MM")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrInvalidSession = errors.New("session must be morning or evening")
)

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var slotSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SlotTimes))
	for _, t := range SlotTimes {
		m[t] = struct{}{}
	}
	return m
}()

// Hour returns the hour component of an "HH:MM" string.
func Hour(hhmm string) (int, error) {
	if !timeRe.MatchString(hhmm) {
		return 0, ErrInvalidTime
	}
	h, _ := strconv.Atoi(hhmm[:2])
	return h, nil
}

// ClassifySession maps a time of day to its session. Only the hour counts:
// 16:59 is morning, 17:00 is evening.
func ClassifySession(hhmm string) (Session, error) {
	h, err := Hour(hhmm)
	if err != nil {
		return "", err
	}
	if h < EveningStartHour {
		return Morning, nil
	}
	return Evening, nil
}

// IsOpeningHours reports whether hhmm is a bookable slot on the given date.
// Sundays only offer the morning session.
func IsOpeningHours(date time.Time, hhmm string) bool {
	if _, ok := slotSet[hhmm]; !ok {
		return false
	}
	if date.Weekday() == time.Sunday {
		h, _ := Hour(hhmm)
		return h < EveningStartHour
	}
	return true
}

// SessionOffered reports whether any slot of the session is bookable on date.
func SessionOffered(date time.Time, s Session) bool {
	return len(SlotsFor(date, s)) > 0
}

// SlotsFor returns the bookable times of a session on a date, in order.
func SlotsFor(date time.Time, s Session) []string {
	out := make([]string, 0, len(SlotTimes))
	for _, t := range SlotTimes {
		if cs, _ := ClassifySession(t); cs != s {
			continue
		}
		if IsOpeningHours(date, t) {
			out = append(out, t)
		}
	}
	return out
}

// MinYear is the first year a stored DATE column can hold.
const MinYear = 1000

// ParseDate parses a YYYY-MM-DD calendar date from MinYear on. The result is
// midnight UTC and should only be used for calendar arithmetic.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, ErrInvalidDate
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil || d.Year() < MinYear {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseSession validates a session name.
func ParseSession(s string) (Session, error) {
	switch Session(s) {
	case Morning, Evening:
		return Session(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSession, s)
}

// Order gives morning before evening for sorting.
func (s Session) Order() int {
	if s == Morning {
		return 0
	}
	return 1
}
