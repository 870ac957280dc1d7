package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

func TestStatements(t *testing.T) {
	stmts := Statements()
	assert.Len(t, stmts, 6)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
	}
	assert.Contains(t, stmts[3], "chk_bookings_token")
	assert.Contains(t, stmts[4], "uq_blocked_slots_slot")
}

func TestDSN(t *testing.T) {
	dsn := Options{User: "app", Pass: "s3cret", Host: "db", Port: "3306", Name: "casa"}.DSN()
	assert.True(t, strings.HasPrefix(dsn, "app:s3cret@tcp(db:3306)/casa?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

// Every value the booking validator accepts must fit its column, or strict
// mode turns a valid booking into an insert error.
func TestBookingColumnsFitValidation(t *testing.T) {
	bookings := Statements()[3]
	for col, n := range map[string]int{
		"name":     service.MaxNameLen,
		"email":    service.MaxEmailLen,
		"phone":    service.MaxPhoneLen,
		"requests": service.MaxRequestsLen,
	} {
		assert.Regexp(t, fmt.Sprintf(`(?m)^\s+%s\s+VARCHAR\(%d\)`, col, n), bookings, col)
	}
}
