package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

// preparedStatement is a template compiled once by the engine and reused for
// every call. Instances are cached per template text on the client.
type preparedStatement struct {
	s        *SQLite
	template string
	compiled *sqlbind.Compiled
	stmt     *sqlx.Stmt
}

// Prepare implements database.Client. The first call for a template compiles
// it; later calls, including concurrent ones, share the same handle.
func (s *SQLite) Prepare(ctx context.Context, query string) (database.Statement, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if p, ok := s.stmts.Load(query); ok {
		return p.(*preparedStatement), nil
	}

	v, err, _ := s.prepare.Do(query, func() (interface{}, error) {
		if p, ok := s.stmts.Load(query); ok {
			return p, nil
		}
		start := time.Now()
		c, err := s.compile(query)
		if err != nil {
			return nil, err
		}
		// The handle is shared by every waiter, so one caller giving up
		// must not fail the others.
		stmt, err := s.db.PreparexContext(context.WithoutCancel(ctx), c.Text)
		database.Observe(ctx, s.observer, database.EngineSQLite, "prepare", query, start, err, 0, nil)
		if err != nil {
			return nil, database.Wrap(database.EngineSQLite, "prepare", query, err, classify)
		}
		p := &preparedStatement{s: s, template: query, compiled: c, stmt: stmt}
		s.stmts.Store(query, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*preparedStatement), nil
}

func (p *preparedStatement) Template() string {
	return p.template
}

func (p *preparedStatement) All(ctx context.Context, args ...any) ([]database.Row, error) {
	return p.all(ctx, "query", args)
}

func (p *preparedStatement) GetOne(ctx context.Context, args ...any) (database.Row, bool, error) {
	rows, err := p.all(ctx, "get_one", args)
	if err != nil || len(rows) == 0 {
		return database.Row{}, false, err
	}
	return rows[0], true, nil
}

func (p *preparedStatement) Run(ctx context.Context, args ...any) (res database.Result, err error) {
	if database.HasReturning(p.template) {
		rows, err := p.all(ctx, "execute", args)
		if err != nil {
			return database.Result{}, err
		}
		return database.EffectFromRows(p.template, rows), nil
	}

	if err := p.s.checkOpen(); err != nil {
		return database.Result{}, err
	}
	start := time.Now()
	defer func() {
		database.Observe(ctx, p.s.observer, database.EngineSQLite, "execute", p.template, start, err, res.RowsAffected, map[string]interface{}{"prepared": true})
	}()

	values, err := p.compiled.Bind(args...)
	if err != nil {
		return database.Result{}, err
	}
	out, err := p.stmt.ExecContext(ctx, values...)
	if err != nil {
		return database.Result{}, database.Wrap(database.EngineSQLite, "execute", p.template, err, classify)
	}
	return effect(p.template, out)
}

func (p *preparedStatement) all(ctx context.Context, op string, args []any) (rows []database.Row, err error) {
	if err := p.s.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		database.Observe(ctx, p.s.observer, database.EngineSQLite, op, p.template, start, err, int64(len(rows)), map[string]interface{}{"prepared": true})
	}()

	values, err := p.compiled.Bind(args...)
	if err != nil {
		return nil, err
	}
	rs, err := p.stmt.QueryxContext(ctx, values...)
	if err != nil {
		return nil, database.Wrap(database.EngineSQLite, op, p.template, err, classify)
	}
	rows, err = collectRows(rs)
	if err != nil {
		return nil, database.Wrap(database.EngineSQLite, op, p.template, err, classify)
	}
	return rows, nil
}
