package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/lifecoach/std/v1/database"
)

// classify maps go-sqlite3 result codes onto the storage error kinds.
func classify(err error) (database.Kind, error) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return database.KindConstraint, database.ErrDuplicateKey
		case sqlite3.ErrConstraintForeignKey:
			return database.KindConstraint, database.ErrForeignKey
		}
		switch se.Code {
		case sqlite3.ErrConstraint:
			return database.KindConstraint, nil
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrFull:
			return database.KindConnectivity, nil
		}
		return database.KindUnknown, nil
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return database.KindConnectivity, nil
	}
	return database.KindUnknown, nil
}
