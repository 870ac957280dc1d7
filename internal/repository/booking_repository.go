package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the scan helpers work
// inside and outside a slot transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// BookingRepo stores bookings in MySQL and implements service.BookingStore.
// Dates are kept in DATE columns and read back as YYYY-MM-DD strings; all
// timestamps are UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

var _ service.BookingStore = (*BookingRepo)(nil)

const bookingColumns = `id, name, email, phone, DATE_FORMAT(booking_date, '%Y-%m-%d'), booking_time,
	session, guests, requests, status, edit_token_hash, token_expires_at, created_at, updated_at`

// SumGuests adds up guests of every non-cancelled booking in the slot.
func (r *BookingRepo) SumGuests(ctx context.Context, date string, session schedule.Session, excludeID string) (int, error) {
	return sumGuests(ctx, r.db, date, session, excludeID)
}

// WithSlot opens a transaction and takes a row lock on the slot_locks row
// for (date, session) before running fn. The row is created on first use.
// Concurrent writers on the same slot queue on that lock until this
// transaction commits or rolls back; other slots are not affected.
func (r *BookingRepo) WithSlot(ctx context.Context, date string, session schedule.Session, fn func(tx service.SlotTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin slot tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO slot_locks (slot_date, session) VALUES (?, ?)`,
		date, string(session)); err != nil {
		return fmt.Errorf("ensure slot lock row: %w", err)
	}
	var locked string
	if err := tx.QueryRowContext(ctx,
		`SELECT session FROM slot_locks WHERE slot_date = ? AND session = ? FOR UPDATE`,
		date, string(session)).Scan(&locked); err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}

	if err := fn(&bookingTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot tx: %w", err)
	}
	committed = true
	return nil
}

// FindByTokenHash looks a booking up by the hash of its current edit token.
func (r *BookingRepo) FindByTokenHash(ctx context.Context, hash string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE edit_token_hash = ? LIMIT 1`, hash)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByID is used by the admin tooling.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Cancel marks a pending booking cancelled and clears its token columns in
// the same statement. A booking that is already cancelled, or missing,
// yields ErrNotFound.
func (r *BookingRepo) Cancel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		    SET status = 'cancelled', edit_token_hash = NULL, token_expires_at = NULL, updated_at = UTC_TIMESTAMP()
		  WHERE id = ? AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// List returns bookings matching f ordered by date, session and time.
func (r *BookingRepo) List(ctx context.Context, f service.BookingFilter) ([]model.Booking, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		where = append(where, "booking_date = ?")
		args = append(args, f.Date)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY booking_date, session, booking_time, created_at"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// bookingTx is the service.SlotTx handed to WithSlot callbacks.
type bookingTx struct {
	tx *sql.Tx
}

func (t *bookingTx) SumGuests(ctx context.Context, date string, session schedule.Session, excludeID string) (int, error) {
	return sumGuests(ctx, t.tx, date, session, excludeID)
}

// Insert writes a new booking together with its token hash.
func (t *bookingTx) Insert(ctx context.Context, b *model.Booking) error {
	var (
		hash sql.NullString
		exp  sql.NullTime
	)
	if b.Token != nil {
		hash = sql.NullString{String: b.Token.Hash, Valid: true}
		exp = sql.NullTime{Time: b.Token.ExpiresAt.UTC(), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO bookings
		   (id, name, email, phone, booking_date, booking_time, session, guests, requests,
		    status, edit_token_hash, token_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Email, b.Phone, b.Date, b.Time, string(b.Session), b.Guests,
		nullString(b.Requests), string(b.Status), hash, exp, b.CreatedAt.UTC(), b.UpdatedAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// UpdateDetails rewrites the editable fields of a pending booking. The token
// columns are not touched.
func (t *bookingTx) UpdateDetails(ctx context.Context, b *model.Booking) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE bookings
		    SET booking_date = ?, booking_time = ?, session = ?, guests = ?, requests = ?, updated_at = ?
		  WHERE id = ? AND status = 'pending'`,
		b.Date, b.Time, string(b.Session), b.Guests, nullString(b.Requests), b.UpdatedAt.UTC(), b.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func sumGuests(ctx context.Context, q querier, date string, session schedule.Session, excludeID string) (int, error) {
	var sum int
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(guests), 0) FROM bookings
		  WHERE booking_date = ? AND session = ? AND status <> 'cancelled' AND id <> ?`,
		date, string(session), excludeID).Scan(&sum)
	return sum, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b        model.Booking
		session  string
		status   string
		requests sql.NullString
		hash     sql.NullString
		exp      sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.Date, &b.Time,
		&session, &b.Guests, &requests, &status, &hash, &exp, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Session = schedule.Session(session)
	b.Status = model.Status(status)
	b.Requests = requests.String
	if hash.Valid {
		b.Token = &model.EditToken{Hash: hash.String}
		if exp.Valid {
			b.Token.ExpiresAt = exp.Time.UTC()
		}
	}
	return &b, nil
}

// expectOne maps a zero-row update to ErrNotFound. The DSN sets
// clientFoundRows so unchanged rows still count as matched.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
