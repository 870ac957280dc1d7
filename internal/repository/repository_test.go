package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

func TestIsDuplicate(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '2025-03-10-evening'"}
	assert.True(t, isDuplicate(dup))
	assert.True(t, isDuplicate(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicate(errors.New("Error 1062")))
}

func TestSentinelsMatchService(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, service.ErrStoreNotFound)
	assert.ErrorIs(t, ErrConflict, service.ErrStoreConflict)
}

// fakeRow feeds fixed values to Scan in column order.
type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r) {
		return fmt.Errorf("scan: want %d columns, got %d", len(r), len(dest))
	}
	for i, d := range dest {
		if sc, ok := d.(interface{ Scan(any) error }); ok {
			if err := sc.Scan(r[i]); err != nil {
				return err
			}
			continue
		}
		switch p := d.(type) {
		case *string:
			*p = r[i].(string)
		case *int:
			*p = r[i].(int)
		case *time.Time:
			*p = r[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported %T", d)
		}
	}
	return nil
}

func TestScanBooking_Pending(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	exp := created.Add(service.EditTokenTTL)
	row := fakeRow{
		"0b9d6e8e-6a40-4c1e-8f0a-6f1d2b1c9a11", "Meera", "meera@example.com", "612345678",
		"2025-03-10", "20:00", "evening", 4, nil, "pending",
		"abc123", exp, created, created,
	}

	b, err := scanBooking(row)
	require.NoError(t, err)
	assert.Equal(t, schedule.Evening, b.Session)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Empty(t, b.Requests)
	require.NotNil(t, b.Token)
	assert.Equal(t, "abc123", b.Token.Hash)
	assert.Equal(t, exp, b.Token.ExpiresAt)
}

func TestScanBooking_CancelledHasNoToken(t *testing.T) {
	now := time.Now().UTC()
	row := fakeRow{
		"0b9d6e8e-6a40-4c1e-8f0a-6f1d2b1c9a11", "Meera", "meera@example.com", "612345678",
		"2025-03-10", "12:30", "morning", 2, "birthday", "cancelled",
		nil, nil, now, now,
	}

	b, err := scanBooking(row)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, b.Status)
	assert.Equal(t, "birthday", b.Requests)
	assert.Nil(t, b.Token)
}
