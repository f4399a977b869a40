package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// IsUniqueConstraintError reports a UNIQUE or PRIMARY KEY violation.
func IsUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return true
	}
	return false
}
