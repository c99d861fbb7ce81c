package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/lifecoach/std/v1/database"
)

func TestConnString(t *testing.T) {
	t.Run("URLWins", func(t *testing.T) {
		cfg := Config{
			URL:        "postgres://u:p@db:5432/coach",
			Connection: Connection{Host: "ignored"},
		}
		assert.Equal(t, "postgres://u:p@db:5432/coach", cfg.ConnString())
	})

	t.Run("KeywordValue", func(t *testing.T) {
		cfg := Config{Connection: Connection{
			Host:     "localhost",
			User:     "coach",
			Password: "it's secret",
			DbName:   "coach",
		}}
		assert.Equal(t,
			`host=localhost port=5432 user=coach password='it\'s secret' dbname=coach sslmode=disable`,
			cfg.ConnString())
	})
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{ConnectionDetails: ConnectionDetails{MaxOpenConns: 5, MinConns: -1}}.withDefaults()

	assert.Equal(t, 5, cfg.ConnectionDetails.MaxOpenConns)
	assert.Equal(t, 0, cfg.ConnectionDetails.MinConns)
	assert.Equal(t, DefaultConnMaxLifetime, cfg.ConnectionDetails.ConnMaxLifetime)
	assert.Equal(t, DefaultConnMaxIdleTime, cfg.ConnectionDetails.ConnMaxIdleTime)
	assert.Equal(t, 10*time.Second, cfg.ConnectionDetails.HealthCheckInterval)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     database.Kind
		sentinel error
	}{
		{"UniqueViolation", &pgconn.PgError{Code: "23505"}, database.KindConstraint, database.ErrDuplicateKey},
		{"ForeignKeyViolation", &pgconn.PgError{Code: "23503"}, database.KindConstraint, database.ErrForeignKey},
		{"NotNullViolation", &pgconn.PgError{Code: "23502"}, database.KindConstraint, nil},
		{"AdminShutdown", &pgconn.PgError{Code: "57P01"}, database.KindConnectivity, nil},
		{"TooManyConnections", &pgconn.PgError{Code: "53300"}, database.KindConnectivity, nil},
		{"SerializationFailure", &pgconn.PgError{Code: "40001"}, database.KindTransaction, nil},
		{"SyntaxError", &pgconn.PgError{Code: "42601"}, database.KindUnknown, nil},
		{"Wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), database.KindConstraint, database.ErrDuplicateKey},
		{"Plain", errors.New("boom"), database.KindUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, sentinel := classify(tt.err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.sentinel, sentinel)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, `{"a":1}`, normalize(map[string]any{"a": 1}))
	assert.Equal(t, `[1,"x"]`, normalize([]any{1, "x"}))

	var n pgtype.Numeric
	assert.NoError(t, n.Scan("12.5"))
	assert.Equal(t, 12.5, normalize(n))
	assert.Nil(t, normalize(pgtype.Numeric{}))

	id := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	assert.Equal(t, "12345678-9abc-def0-1234-56789abcdef0", normalize(id))

	assert.Equal(t, int64(7), normalize(int64(7)))
}
