package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// memStore is an in-memory BookingStore. A single mutex
// stands in for the per-slot row lock.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]model.Booking
	inserts  int

	// failInsert, when set, is returned by Insert.
	failInsert error
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]model.Booking{}}
}

func (m *memStore) sumLocked(date string, session schedule.Session, excludeID string) int {
	sum := 0
	for id, b := range m.bookings {
		if id == excludeID || !b.Active() {
			continue
		}
		if b.Date == date && b.Session == session {
			sum += b.Guests
		}
	}
	return sum
}

func (m *memStore) SumGuests(_ context.Context, date string, session schedule.Session, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sumLocked(date, session, excludeID), nil
}

func (m *memStore) WithSlot(_ context.Context, _ string, _ schedule.Session, fn func(tx SlotTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{m: m, staged: map[string]model.Booking{}}
	if err := fn(tx); err != nil {
		return err
	}
	for id, b := range tx.staged {
		m.bookings[id] = b
	}
	return nil
}

func (m *memStore) FindByTokenHash(_ context.Context, hash string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Token != nil && b.Token.Hash == hash {
			cp := b
			return &cp, nil
		}
	}
	return nil, ErrStoreNotFound
}

func (m *memStore) Cancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != model.StatusPending {
		return ErrStoreNotFound
	}
	b.Cancel()
	m.bookings[id] = b
	return nil
}

func (m *memStore) List(_ context.Context, f BookingFilter) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if f.Date != "" && b.Date != f.Date {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) get(id string) model.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookings[id]
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

// expire moves the token expiry of a booking into the past.
func (m *memStore) expire(id string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bookings[id]
	tok := *b.Token
	tok.ExpiresAt = at
	b.Token = &tok
	m.bookings[id] = b
}

// memBlocks is an in-memory BlockStore.
type memBlocks struct {
	mu     sync.Mutex
	blocks []model.BlockedSlot
	nextID uint64
}

func (m *memBlocks) Create(_ context.Context, b *model.BlockedSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.blocks {
		if x.Date == b.Date && x.Session == b.Session {
			return ErrStoreConflict
		}
	}
	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = time.Now().UTC()
	m.blocks = append(m.blocks, *b)
	return nil
}

func (m *memBlocks) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, x := range m.blocks {
		if x.ID == id {
			m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
			return nil
		}
	}
	return ErrStoreNotFound
}

func (m *memBlocks) Exists(_ context.Context, date string, session schedule.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.blocks {
		if x.Date == date && x.Session == session {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBlocks) List(_ context.Context) ([]model.BlockedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.BlockedSlot(nil), m.blocks...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Session.Order() < out[j].Session.Order()
	})
	return out, nil
}

// memTx stages writes until WithSlot's callback returns nil. It is only used
// while the store mutex is held, so it reads the maps directly.
type memTx struct {
	m      *memStore
	staged map[string]model.Booking
}

func (t *memTx) SumGuests(_ context.Context, date string, session schedule.Session, excludeID string) (int, error) {
	sum := t.m.sumLocked(date, session, excludeID)
	for id, b := range t.staged {
		if id == excludeID || !b.Active() || b.Date != date || b.Session != session {
			continue
		}
		sum += b.Guests
		if old, ok := t.m.bookings[id]; ok && old.Active() && old.Date == date && old.Session == session {
			sum -= old.Guests
		}
	}
	return sum, nil
}

func (t *memTx) Insert(_ context.Context, b *model.Booking) error {
	if t.m.failInsert != nil {
		return t.m.failInsert
	}
	t.m.inserts++
	t.staged[b.ID] = *b
	return nil
}

func (t *memTx) UpdateDetails(_ context.Context, b *model.Booking) error {
	cur, ok := t.m.bookings[b.ID]
	if !ok || cur.Status != model.StatusPending {
		return ErrStoreNotFound
	}
	cur.Date, cur.Time, cur.Session = b.Date, b.Time, b.Session
	cur.Guests, cur.Requests, cur.UpdatedAt = b.Guests, b.Requests, b.UpdatedAt
	t.staged[b.ID] = cur
	return nil
}

// recordingNotifier keeps every event and fails when err is set.
type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev queue.BookingEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) kinds() []queue.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]queue.EventKind, 0, len(n.events))
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}
