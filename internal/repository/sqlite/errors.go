package sqlite

import (
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isUniqueViolation reports whether err is SQLite rejecting a write because
// of a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary result code only (extended codes disabled on the connection).
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}
