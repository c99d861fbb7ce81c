package postgres

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lifecoach/std/v1/database"
)

// classify maps PostgreSQL SQLSTATE classes and pgx connection failures onto
// the storage error kinds.
func classify(err error) (database.Kind, error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case code == "23505":
			return database.KindConstraint, database.ErrDuplicateKey
		case code == "23503":
			return database.KindConstraint, database.ErrForeignKey
		case strings.HasPrefix(code, "23"):
			return database.KindConstraint, nil
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P0"),
			code == "53300", code == "55P03":
			return database.KindConnectivity, nil
		case strings.HasPrefix(code, "40"), strings.HasPrefix(code, "25"):
			return database.KindTransaction, nil
		}
		return database.KindUnknown, nil
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return database.KindConnectivity, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return database.KindConnectivity, nil
	}
	return database.KindUnknown, nil
}
