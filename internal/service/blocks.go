package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// MaxReasonLen bounds the free-text note on a block.
const MaxReasonLen = 255

// SlotRegistry manages administrator blocks. Sunday evenings are closed by
// schedule.IsOpeningHours and never need a row here.
type SlotRegistry struct {
	store BlockStore
}

func NewSlotRegistry(store BlockStore) *SlotRegistry {
	return &SlotRegistry{store: store}
}

// Block closes a slot. Duplicate blocks are rejected with
// ErrSlotAlreadyBlocked.
func (r *SlotRegistry) Block(ctx context.Context, date, session, reason string, actor uint64) (*model.BlockedSlot, error) {
	verr := &ValidationError{}
	date = strings.TrimSpace(date)
	if _, err := schedule.ParseDate(date); err != nil {
		verr.add("date", "date must be a valid YYYY-MM-DD date")
	}
	sess, err := schedule.ParseSession(strings.TrimSpace(session))
	if err != nil {
		verr.add("session", "session must be morning or evening")
	}
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > MaxReasonLen {
		verr.add("reason", "reason must be at most 255 characters")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	b := &model.BlockedSlot{Date: date, Session: sess, Reason: reason, CreatedBy: actor}
	if err := r.store.Create(ctx, b); err != nil {
		if errors.Is(err, ErrStoreConflict) {
			return nil, ErrSlotAlreadyBlocked
		}
		return nil, fmt.Errorf("create block: %w", err)
	}
	return b, nil
}

// Unblock hard-deletes a block.
func (r *SlotRegistry) Unblock(ctx context.Context, id uint64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return ErrBlockNotFound
		}
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

func (r *SlotRegistry) IsBlocked(ctx context.Context, date string, session schedule.Session) (bool, error) {
	ok, err := r.store.Exists(ctx, date, session)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return ok, nil
}

// List returns every block ordered by date.
func (r *SlotRegistry) List(ctx context.Context) ([]model.BlockedSlot, error) {
	out, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return out, nil
}
