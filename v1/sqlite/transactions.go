package sqlite

import (
	"context"
	"database/sql/driver"

	"github.com/jmoiron/sqlx"

	"github.com/lifecoach/std/v1/database"
)

// WithTransaction implements database.Client. The scope pins one pooled
// connection and opens the transaction with BEGIN IMMEDIATE so the write lock
// is taken up front instead of failing on upgrade.
func (s *SQLite) WithTransaction(ctx context.Context, fn func(tx database.Client) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return database.Wrap(database.EngineSQLite, "begin", "", err, classify)
	}
	return s.coord.Run(ctx, &txConn{conn: conn}, func(scope *database.Scope) database.Client {
		return &txClient{s: s, conn: conn, scope: scope}
	}, fn)
}

// txConn adapts a pinned connection to database.TxConn.
type txConn struct {
	conn *sqlx.Conn
}

func (t *txConn) Exec(ctx context.Context, statement string) error {
	if statement == "BEGIN" {
		statement = "BEGIN IMMEDIATE"
	}
	_, err := t.conn.ExecContext(ctx, statement)
	return err
}

func (t *txConn) Release(discard bool) {
	if discard {
		// Returning ErrBadConn makes database/sql close the driver
		// connection instead of pooling it with a transaction still open.
		_ = t.conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	_ = t.conn.Close()
}

// txClient is the database.Client handed to transaction work. Every
// statement runs on the pinned connection and is refused once the scope is
// released.
type txClient struct {
	s     *SQLite
	conn  *sqlx.Conn
	scope *database.Scope
}

func (t *txClient) Engine() database.Engine {
	return database.EngineSQLite
}

func (t *txClient) Query(ctx context.Context, query string, args ...any) ([]database.Row, error) {
	var rows []database.Row
	err := t.scope.Do(func() error {
		var err error
		rows, err = t.s.query(ctx, t.conn, "query", query, args)
		return err
	})
	return rows, err
}

func (t *txClient) GetOne(ctx context.Context, query string, args ...any) (database.Row, bool, error) {
	var (
		row database.Row
		ok  bool
	)
	err := t.scope.Do(func() error {
		var err error
		row, ok, err = t.s.getOne(ctx, t.conn, query, args)
		return err
	})
	return row, ok, err
}

func (t *txClient) Execute(ctx context.Context, query string, args ...any) (database.Result, error) {
	var res database.Result
	err := t.scope.Do(func() error {
		var err error
		res, err = t.s.execute(ctx, t.conn, query, args)
		return err
	})
	return res, err
}

func (t *txClient) RunRaw(ctx context.Context, batch string) error {
	return t.scope.Do(func() error {
		return t.s.runRaw(ctx, t.conn, batch)
	})
}

// Prepare returns a handle bound to this scope. It executes through the
// pinned connection and stops working when the scope ends.
func (t *txClient) Prepare(_ context.Context, query string) (database.Statement, error) {
	if t.scope.Closed() {
		return nil, database.ErrScopeClosed
	}
	if _, err := t.s.compile(query); err != nil {
		return nil, err
	}
	return database.NewTemplateStatement(t, query), nil
}

func (t *txClient) WithTransaction(ctx context.Context, fn func(tx database.Client) error) error {
	return t.scope.Nested(ctx, t, fn)
}
