package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifecoach/std/v1/database"
)

// WithTransaction implements database.Client. The scope checks one
// connection out of the pool and keeps it until the transaction ends, so
// concurrent scopes never see each other's uncommitted writes.
func (p *Postgres) WithTransaction(ctx context.Context, fn func(tx database.Client) error) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	conn, err := p.Pool().Acquire(ctx)
	if err != nil {
		return database.Wrap(database.EnginePostgres, "begin", "", err, classify)
	}
	return p.coord.Run(ctx, &txConn{conn: conn}, func(scope *database.Scope) database.Client {
		return &txClient{p: p, conn: conn, scope: scope}
	}, fn)
}

type txConn struct {
	conn *pgxpool.Conn
}

// Exec runs a control statement. PostgreSQL answers COMMIT on an aborted
// transaction with the tag ROLLBACK and no error; that is a failed commit.
func (t *txConn) Exec(ctx context.Context, statement string) error {
	tag, err := t.conn.Exec(ctx, statement)
	if err != nil {
		return err
	}
	if statement == "COMMIT" && tag.String() == "ROLLBACK" {
		return pgx.ErrTxCommitRollback
	}
	return nil
}

func (t *txConn) Release(discard bool) {
	if discard {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = t.conn.Conn().Close(ctx)
		cancel()
	}
	// The pool destroys a closed connection or one still inside a transaction.
	t.conn.Release()
}

// txClient runs every statement on the checked out connection.
type txClient struct {
	p     *Postgres
	conn  *pgxpool.Conn
	scope *database.Scope
}

func (t *txClient) Engine() database.Engine {
	return database.EnginePostgres
}

func (t *txClient) Query(ctx context.Context, query string, args ...any) ([]database.Row, error) {
	var rows []database.Row
	err := t.scope.Do(func() error {
		var err error
		rows, err = t.p.query(ctx, t.conn, "query", query, args)
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
		row, ok, err = t.p.getOne(ctx, t.conn, query, args)
		return err
	})
	return row, ok, err
}

func (t *txClient) Execute(ctx context.Context, query string, args ...any) (database.Result, error) {
	var res database.Result
	err := t.scope.Do(func() error {
		var err error
		res, err = t.p.execute(ctx, t.conn, query, args)
		return err
	})
	return res, err
}

func (t *txClient) RunRaw(ctx context.Context, batch string) error {
	return t.scope.Do(func() error {
		return t.p.runRaw(ctx, t.conn, batch)
	})
}

func (t *txClient) Prepare(_ context.Context, query string) (database.Statement, error) {
	if t.scope.Closed() {
		return nil, database.ErrScopeClosed
	}
	if _, err := t.p.compile(query); err != nil {
		return nil, err
	}
	return database.NewTemplateStatement(t, query), nil
}

func (t *txClient) WithTransaction(ctx context.Context, fn func(tx database.Client) error) error {
	return t.scope.Nested(ctx, t, fn)
}
