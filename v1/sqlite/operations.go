package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lifecoach/std/v1/database"
)

// executor is the statement surface shared by *sqlx.DB and a pinned *sqlx.Conn.
type executor interface {
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Query implements database.Client.
func (s *SQLite) Query(ctx context.Context, query string, args ...any) ([]database.Row, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.query(ctx, s.db, "query", query, args)
}

// GetOne implements database.Client.
func (s *SQLite) GetOne(ctx context.Context, query string, args ...any) (database.Row, bool, error) {
	if err := s.checkOpen(); err != nil {
		return database.Row{}, false, err
	}
	return s.getOne(ctx, s.db, query, args)
}

// Execute implements database.Client.
func (s *SQLite) Execute(ctx context.Context, query string, args ...any) (database.Result, error) {
	if err := s.checkOpen(); err != nil {
		return database.Result{}, err
	}
	return s.execute(ctx, s.db, query, args)
}

// RunRaw implements database.Client.
func (s *SQLite) RunRaw(ctx context.Context, batch string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.runRaw(ctx, s.db, batch)
}

func (s *SQLite) query(ctx context.Context, ex executor, op, template string, args []any) (rows []database.Row, err error) {
	start := time.Now()
	defer func() {
		database.Observe(ctx, s.observer, database.EngineSQLite, op, template, start, err, int64(len(rows)), nil)
	}()

	c, values, err := s.bind(template, args)
	if err != nil {
		return nil, err
	}
	rs, err := ex.QueryxContext(ctx, c.Text, values...)
	if err != nil {
		return nil, database.Wrap(database.EngineSQLite, op, template, err, classify)
	}
	rows, err = collectRows(rs)
	if err != nil {
		return nil, database.Wrap(database.EngineSQLite, op, template, err, classify)
	}
	return rows, nil
}

func (s *SQLite) getOne(ctx context.Context, ex executor, template string, args []any) (database.Row, bool, error) {
	rows, err := s.query(ctx, ex, "get_one", template, args)
	if err != nil || len(rows) == 0 {
		return database.Row{}, false, err
	}
	return rows[0], true, nil
}

func (s *SQLite) execute(ctx context.Context, ex executor, template string, args []any) (res database.Result, err error) {
	if database.HasReturning(template) {
		rows, err := s.query(ctx, ex, "execute", template, args)
		if err != nil {
			return database.Result{}, err
		}
		return database.EffectFromRows(template, rows), nil
	}

	start := time.Now()
	defer func() {
		database.Observe(ctx, s.observer, database.EngineSQLite, "execute", template, start, err, res.RowsAffected, nil)
	}()

	c, values, err := s.bind(template, args)
	if err != nil {
		return database.Result{}, err
	}
	out, err := ex.ExecContext(ctx, c.Text, values...)
	if err != nil {
		return database.Result{}, database.Wrap(database.EngineSQLite, "execute", template, err, classify)
	}
	return effect(template, out)
}

func (s *SQLite) runRaw(ctx context.Context, ex executor, batch string) (err error) {
	start := time.Now()
	defer func() {
		database.Observe(ctx, s.observer, database.EngineSQLite, "run_raw", batch, start, err, 0, nil)
	}()

	if _, err = ex.ExecContext(ctx, batch); err != nil {
		return database.Wrap(database.EngineSQLite, "run_raw", batch, err, classify)
	}
	return nil
}

// effect converts a driver result. The last insert rowid is only meaningful
// for a plain insert that wrote exactly one row. An upsert that took the
// update path leaves it at whatever the connection inserted before, so
// upserts report no id unless they say RETURNING.
func effect(template string, out sql.Result) (database.Result, error) {
	affected, err := out.RowsAffected()
	if err != nil {
		return database.Result{}, database.Wrap(database.EngineSQLite, "execute", template, err, classify)
	}
	res := database.Result{RowsAffected: affected}
	if affected == 1 && database.IsInsert(template) && !database.IsUpsert(template) {
		if id, err := out.LastInsertId(); err == nil && id > 0 {
			res.InsertedID = id
		}
	}
	return res, nil
}

func collectRows(rs *sqlx.Rows) ([]database.Row, error) {
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}
	rows := make([]database.Row, 0)
	for rs.Next() {
		values, err := rs.SliceScan()
		if err != nil {
			return nil, err
		}
		rows = append(rows, database.NewRow(columns, values))
	}
	return rows, rs.Err()
}
