package service

import (
	"errors"
	"fmt"
	"strings"
)

// Outcomes of the booking engine. Each one has its own corrective action for
// the customer, so callers must keep them apart.
var (
	// ErrSlotClosed means the time is outside the opening schedule or falls
	// on a Sunday evening.
	ErrSlotClosed = errors.New("this session is not offered on this day")
	// ErrSlotBlocked means an administrator closed the (date, session).
	ErrSlotBlocked = errors.New("this session has been closed by the restaurant")
	// ErrTokenInvalid means no pending booking carries the presented token.
	// A token consumed by a cancellation also lands here.
	ErrTokenInvalid = errors.New("booking link is not valid")
	// ErrTokenExpired means the token exists but is past its expiry.
	ErrTokenExpired = errors.New("booking link has expired")
	// ErrAlreadyCancelled means the booking behind the token is cancelled.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	ErrSlotAlreadyBlocked = errors.New("slot is already blocked")
	ErrBlockNotFound      = errors.New("blocked slot not found")
)

// FieldError describes one failing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation, not just the
// first one.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// CapacityExceededError is returned when the requested party does not fit in
// the slot. Available is never negative.
type CapacityExceededError struct {
	Available int
}

func (e *CapacityExceededError) Error() string {
	if e.Available == 0 {
		return "this session is fully booked"
	}
	return fmt.Sprintf("only %d spots remain for this session", e.Available)
}
