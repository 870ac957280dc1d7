package service

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// Input limits.
const (
	MaxNameLen     = 100
	MaxEmailLen    = 255
	MaxRequestsLen = 500
	// MaxPhoneLen is the longest phone phoneRe accepts: "+" and 20 more.
	MaxPhoneLen = 21
	MinGuests   = 1
	MaxGuests   = 30
)

var phoneRe = regexp.MustCompile(`^\+?[0-9\s-]{9,20}$`)

// BookingInput is a create request as it arrives from the form. Guests is a
// string because forms submit it that way; it is parsed here, at the
// boundary.
type BookingInput struct {
	Name     string
	Email    string
	Phone    string
	Date     string
	Time     string
	Guests   string
	Requests string
}

// EditInput carries the fields a customer may change through the
// self-service link. A nil Requests keeps the stored note; an empty one
// clears it.
type EditInput struct {
	Date     string
	Time     string
	Guests   string
	Requests *string
}

// slotRequest is the validated, typed part shared by create and edit.
type slotRequest struct {
	date     time.Time
	dateStr  string
	time     string
	guests   int
	requests string
	// keepRequests is set when the edit left the note out.
	keepRequests bool
}

type contact struct {
	name  string
	email string
	phone string
}

func (in BookingInput) validate() (contact, slotRequest, error) {
	verr := &ValidationError{}
	c := contact{
		name:  strings.TrimSpace(in.Name),
		email: strings.TrimSpace(in.Email),
		phone: strings.TrimSpace(in.Phone),
	}

	switch n := utf8.RuneCountInString(c.name); {
	case n == 0:
		verr.add("name", "name is required")
	case n > MaxNameLen:
		verr.add("name", "name must be at most 100 characters")
	}

	switch {
	case c.email == "":
		verr.add("email", "email is required")
	case len(c.email) > MaxEmailLen:
		verr.add("email", "email must be at most 255 characters")
	case !validEmail(c.email):
		verr.add("email", "email is not a valid address")
	}

	if !phoneRe.MatchString(c.phone) {
		verr.add("phone", "phone must be 9 to 20 digits, spaces or dashes, optionally starting with +")
	}

	req := EditInput{Date: in.Date, Time: in.Time, Guests: in.Guests, Requests: &in.Requests}.check(verr)
	return c, req, verr.orNil()
}

func (in EditInput) validate() (slotRequest, error) {
	verr := &ValidationError{}
	req := in.check(verr)
	return req, verr.orNil()
}

func (in EditInput) check(verr *ValidationError) slotRequest {
	req := slotRequest{
		dateStr:      strings.TrimSpace(in.Date),
		time:         strings.TrimSpace(in.Time),
		keepRequests: in.Requests == nil,
	}
	if in.Requests != nil {
		req.requests = strings.TrimSpace(*in.Requests)
	}

	d, err := schedule.ParseDate(req.dateStr)
	if err != nil {
		verr.add("date", "date must be a valid YYYY-MM-DD date")
	}
	req.date = d

	if _, err := schedule.Hour(req.time); err != nil {
		verr.add("time", "time must be HH:MM")
	}

	g, err := strconv.Atoi(strings.TrimSpace(in.Guests))
	switch {
	case err != nil:
		verr.add("guests", "guests must be a whole number")
	case g < MinGuests || g > MaxGuests:
		verr.add("guests", "guests must be between 1 and 30")
	}
	req.guests = g

	if utf8.RuneCountInString(req.requests) > MaxRequestsLen {
		verr.add("requests", "requests must be at most 500 characters")
	}
	return req
}

// validEmail accepts a bare address with a dotted domain. Display-name forms
// such as "Ana <ana@example.com>" are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
