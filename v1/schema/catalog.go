package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/postgres"
	"github.com/lifecoach/std/v1/sqlite"
)

// catalog answers structural questions about the live schema through gorm's
// migrator, which knows how to read each engine's system tables.
type catalog struct {
	gdb   *gorm.DB
	close func() error
}

// openCatalog opens gorm over the connections the adapter already owns.
// For PostgreSQL the pgx pool is exposed as a *sql.DB; closing that handle
// leaves the pool open.
func openCatalog(ctx context.Context, db database.DB) (*catalog, error) {
	cfg := &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	}

	var (
		dialector gorm.Dialector
		closeFn   = func() error { return nil }
	)
	switch d := db.(type) {
	case *sqlite.SQLite:
		dialector = gormsqlite.New(gormsqlite.Config{
			DriverName: sqlite.DriverName,
			Conn:       d.DB().DB,
		})
	case *postgres.Postgres:
		sqlDB := stdlib.OpenDBFromPool(d.Pool())
		dialector = gormpostgres.New(gormpostgres.Config{Conn: sqlDB})
		closeFn = sqlDB.Close
	default:
		return nil, fmt.Errorf("schema: no catalog access for %T", db)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to open schema catalog: %w", err)
	}
	return &catalog{gdb: gdb.WithContext(ctx), close: closeFn}, nil
}

// HasColumn reports whether table has column. A missing table is an error:
// Bootstrap must run first.
func (c *catalog) HasColumn(table, column string) (bool, error) {
	m := c.gdb.Migrator()
	if !m.HasTable(table) {
		return false, fmt.Errorf("table %q does not exist", table)
	}
	columns, err := m.ColumnTypes(table)
	if err != nil {
		return false, fmt.Errorf("failed to read columns of %q: %w", table, err)
	}
	for _, col := range columns {
		if strings.EqualFold(col.Name(), column) {
			return true, nil
		}
	}
	return false, nil
}

func (c *catalog) Close() error {
	return c.close()
}
