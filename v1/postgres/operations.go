package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lifecoach/std/v1/database"
)

// querier is the statement surface shared by *pgxpool.Pool and a checked
// out *pgxpool.Conn.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Query implements database.Client.
func (p *Postgres) Query(ctx context.Context, query string, args ...any) ([]database.Row, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return p.query(ctx, p.Pool(), "query", query, args)
}

// GetOne implements database.Client.
func (p *Postgres) GetOne(ctx context.Context, query string, args ...any) (database.Row, bool, error) {
	if err := p.checkOpen(); err != nil {
		return database.Row{}, false, err
	}
	return p.getOne(ctx, p.Pool(), query, args)
}

// Execute implements database.Client.
func (p *Postgres) Execute(ctx context.Context, query string, args ...any) (database.Result, error) {
	if err := p.checkOpen(); err != nil {
		return database.Result{}, err
	}
	return p.execute(ctx, p.Pool(), query, args)
}

// RunRaw implements database.Client. Without arguments pgx sends the batch
// over the simple protocol, which accepts several statements at once.
func (p *Postgres) RunRaw(ctx context.Context, batch string) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	return p.runRaw(ctx, p.Pool(), batch)
}

func (p *Postgres) query(ctx context.Context, q querier, op, template string, args []any) (rows []database.Row, err error) {
	start := time.Now()
	defer func() {
		database.Observe(ctx, p.observer, database.EnginePostgres, op, template, start, err, int64(len(rows)), nil)
	}()

	c, values, err := p.bind(template, args)
	if err != nil {
		return nil, err
	}
	rs, err := q.Query(ctx, c.Text, values...)
	if err != nil {
		return nil, database.Wrap(database.EnginePostgres, op, template, err, classify)
	}
	rows, err = collectRows(rs)
	if err != nil {
		return nil, database.Wrap(database.EnginePostgres, op, template, err, classify)
	}
	return rows, nil
}

func (p *Postgres) getOne(ctx context.Context, q querier, template string, args []any) (database.Row, bool, error) {
	rows, err := p.query(ctx, q, "get_one", template, args)
	if err != nil || len(rows) == 0 {
		return database.Row{}, false, err
	}
	return rows[0], true, nil
}

// execute runs a statement for its effect. PostgreSQL has no last insert id,
// so inserts that need one must say RETURNING.
func (p *Postgres) execute(ctx context.Context, q querier, template string, args []any) (res database.Result, err error) {
	if database.HasReturning(template) {
		rows, err := p.query(ctx, q, "execute", template, args)
		if err != nil {
			return database.Result{}, err
		}
		return database.EffectFromRows(template, rows), nil
	}

	start := time.Now()
	defer func() {
		database.Observe(ctx, p.observer, database.EnginePostgres, "execute", template, start, err, res.RowsAffected, nil)
	}()

	c, values, err := p.bind(template, args)
	if err != nil {
		return database.Result{}, err
	}
	tag, err := q.Exec(ctx, c.Text, values...)
	if err != nil {
		return database.Result{}, database.Wrap(database.EnginePostgres, "execute", template, err, classify)
	}
	return database.Result{RowsAffected: tag.RowsAffected()}, nil
}

func (p *Postgres) runRaw(ctx context.Context, q querier, batch string) (err error) {
	start := time.Now()
	defer func() {
		database.Observe(ctx, p.observer, database.EnginePostgres, "run_raw", batch, start, err, 0, nil)
	}()

	if _, err = q.Exec(ctx, batch); err != nil {
		return database.Wrap(database.EnginePostgres, "run_raw", batch, err, classify)
	}
	return nil
}

func collectRows(rs pgx.Rows) ([]database.Row, error) {
	defer rs.Close()

	fields := rs.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	rows := make([]database.Row, 0)
	for rs.Next() {
		values, err := rs.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		rows = append(rows, database.NewRow(columns, values))
	}
	return rows, rs.Err()
}

// normalize turns the richer pgx decodings into the plain values a Row
// carries on both engines: JSON documents become their text, numerics become
// float64 and UUIDs become their canonical string.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	case time.Time:
		return val.UTC()
	}
	return v
}
