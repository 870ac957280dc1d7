package repository

import (
	"context"
	"database/sql"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// BlockedSlotRepo persists administrator blocks. The table has a unique key
// on (slot_date, session), so at most one block exists per slot.
type BlockedSlotRepo struct {
	db *sql.DB
}

func NewBlockedSlotRepo(db *sql.DB) *BlockedSlotRepo { return &BlockedSlotRepo{db: db} }

var _ service.BlockStore = (*BlockedSlotRepo)(nil)

// Create inserts b and fills ID and CreatedAt. A duplicate slot yields
// ErrConflict.
func (r *BlockedSlotRepo) Create(ctx context.Context, b *model.BlockedSlot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_slots (slot_date, session, reason, created_by) VALUES (?, ?, ?, ?)`,
		b.Date, string(b.Session), nullString(b.Reason), nullID(b.CreatedBy))
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM blocked_slots WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
}

// Delete removes the block with the given id.
func (r *BlockedSlotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocked_slots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Exists reports whether (date, session) is blocked.
func (r *BlockedSlotRepo) Exists(ctx context.Context, date string, session schedule.Session) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM blocked_slots WHERE slot_date = ? AND session = ? LIMIT 1`,
		date, string(session)).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// List returns all blocks, oldest date first and morning before evening.
// session is an ENUM('morning','evening') so it sorts by declaration order.
func (r *BlockedSlotRepo) List(ctx context.Context) ([]model.BlockedSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, DATE_FORMAT(slot_date, '%Y-%m-%d'), session, reason, created_by, created_at
		   FROM blocked_slots
		  ORDER BY slot_date, session`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BlockedSlot{}
	for rows.Next() {
		var (
			b       model.BlockedSlot
			session string
			reason  sql.NullString
			by      sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Date, &session, &reason, &by, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Session = schedule.Session(session)
		b.Reason = reason.String
		if by.Valid {
			b.CreatedBy = uint64(by.Int64)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nullID(id uint64) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(id), Valid: id != 0}
}
