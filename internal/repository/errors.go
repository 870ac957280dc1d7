// Package repository implements the MySQL stores behind the booking engine
// and the admin accounts. The sentinel values below let callers tell a
// missing row from a uniqueness clash without looking at driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

// ErrNotFound is returned when the addressed row does not exist, or no
// longer matches the state an update requires (for example a booking that
// is no longer pending). It is the engine's ErrStoreNotFound so the service
// can match it with errors.Is.
var ErrNotFound = service.ErrStoreNotFound

// ErrConflict is returned when a write would violate a unique key, such as
// a second block on the same (date, session). Handlers translate it to 409.
var ErrConflict = service.ErrStoreConflict

// ErrEmailExists is returned when an admin account with that email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
