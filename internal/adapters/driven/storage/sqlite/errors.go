package sqlite

import (
	"errors"
	"fmt"

	sqlitedrv "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/custodia-labs/chatstore/internal/core/domain"
)

// wrapErr annotates an engine error with the operation that failed and,
// when the engine reports a known condition, the matching domain error.
func wrapErr(op string, err error) error {
	if kind := classify(err); kind != nil {
		return fmt.Errorf("%s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// classify maps a SQLite result code to a domain error, or nil.
func classify(err error) error {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return nil
	}
	// Extended codes carry the primary code in the low byte.
	switch se.Code() & 0xff {
	case sqlitelib.SQLITE_CONSTRAINT:
		return domain.ErrConstraint
	case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
		return domain.ErrBusy
	default:
		return nil
	}
}
