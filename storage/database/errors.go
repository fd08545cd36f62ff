package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pqUniqueViolation = "23505"

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY constraint.
// If columns are given, the violated constraint must mention one of them.
func IsUniqueViolation(err error, columns ...string) bool {
	var msg string

	var pqErr *pq.Error
	var liteErr *sqlite.Error
	switch {
	case errors.As(err, &pqErr):
		if pqErr.Code != pqUniqueViolation {
			return false
		}
		msg = pqErr.Constraint + " " + pqErr.Detail
	case errors.As(err, &liteErr):
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		default:
			return false
		}
		msg = liteErr.Error()
	default:
		return false
	}

	if len(columns) == 0 {
		return true
	}
	for _, col := range columns {
		if strings.Contains(msg, col) {
			return true
		}
	}
	return false
}
