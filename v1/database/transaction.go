package database

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TxConn is one engine connection reserved for the whole of a transaction scope.
type TxConn interface {
	// Exec runs a transaction control statement such as BEGIN or SAVEPOINT.
	Exec(ctx context.Context, statement string) error

	// Release hands the connection back to its owner. discard is true when a
	// failed ROLLBACK may have left a transaction open on it; such a
	// connection must be closed rather than reused.
	Release(discard bool)
}

// Coordinator drives transaction scopes for one engine: BEGIN, run the work,
// COMMIT or ROLLBACK, and release the connection on every exit path.
type Coordinator struct {
	Engine   Engine
	Logger   Logger
	Observer Observer
}

// Run executes fn inside a new transaction on conn. view builds the Client
// handed to fn; it must route every statement through the Scope it receives.
//
// conn is released exactly once before Run returns, including when fn
// panics. A failed ROLLBACK is logged and the error from fn is returned
// unchanged. A failed COMMIT is returned as a *StorageError matching
// ErrCommitFailed and the scope is rolled back.
func (c *Coordinator) Run(ctx context.Context, conn TxConn, view func(*Scope) Client, fn func(tx Client) error) (err error) {
	start := time.Now()
	scope := &Scope{coord: c, conn: conn}
	outcome := "rollback"

	defer func() {
		discard := scope.close()
		conn.Release(discard)
		Observe(ctx, c.Observer, c.Engine, "transaction", "", start, err, 0, map[string]interface{}{"outcome": outcome})
	}()

	if berr := conn.Exec(ctx, "BEGIN"); berr != nil {
		outcome = "begin_failed"
		return c.wrap("begin", berr)
	}

	defer func() {
		if p := recover(); p != nil {
			outcome = "panic"
			scope.rollback(ctx, fmt.Errorf("panic in transaction: %v", p))
			panic(p)
		}
	}()

	if werr := fn(view(scope)); werr != nil {
		scope.rollback(ctx, werr)
		return werr
	}

	if cerr := scope.exec(ctx, "COMMIT"); cerr != nil {
		outcome = "commit_failed"
		c.logger().Error("transaction commit failed, rolling back", cerr, map[string]interface{}{
			"engine": string(c.Engine),
		})
		scope.rollback(ctx, cerr)
		return &StorageError{
			Engine: c.Engine,
			Op:     "commit",
			Kind:   KindTransaction,
			Reason: ErrCommitFailed,
			Err:    cerr,
		}
	}

	outcome = "commit"
	return nil
}

func (c *Coordinator) wrap(op string, err error) error {
	return &StorageError{
		Engine: c.Engine,
		Op:     op,
		Kind:   KindTransaction,
		Err:    err,
	}
}

func (c *Coordinator) logger() Logger {
	if c.Logger == nil {
		return NopLogger{}
	}
	return c.Logger
}

// Scope is the live state of one transaction. Transaction views call Do for
// every statement so that statements are serialised on the single
// connection and refused once the scope has been released.
type Scope struct {
	coord *Coordinator
	conn  TxConn

	mu         sync.Mutex
	closed     bool
	broken     bool
	savepoints int
}

// Do runs fn while holding the scope. It returns ErrScopeClosed if the
// coordinator call that created the scope has already returned.
func (s *Scope) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScopeClosed
	}
	return fn()
}

// Closed reports whether the scope has been released.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Nested runs fn inside a savepoint of the current transaction. view is the
// Client fn receives, normally the same transaction view that was asked to
// nest. An error from fn rolls back to the savepoint and is returned
// unchanged; commit stays with the outermost Run.
func (s *Scope) Nested(ctx context.Context, view Client, fn func(tx Client) error) (err error) {
	start := time.Now()
	name, err := s.savepoint(ctx)
	if err != nil {
		return err
	}
	outcome := "rollback"
	defer func() {
		Observe(ctx, s.coord.Observer, s.coord.Engine, "savepoint", name, start, err, 0, map[string]interface{}{"outcome": outcome})
	}()

	defer func() {
		if p := recover(); p != nil {
			s.rollbackTo(ctx, name, fmt.Errorf("panic in nested transaction: %v", p))
			panic(p)
		}
	}()

	if werr := fn(view); werr != nil {
		s.rollbackTo(ctx, name, werr)
		return werr
	}

	if rerr := s.exec(ctx, "RELEASE SAVEPOINT "+name); rerr != nil {
		return s.coord.wrap("release savepoint", rerr)
	}
	outcome = "release"
	return nil
}

func (s *Scope) savepoint(ctx context.Context) (string, error) {
	var name string
	err := s.Do(func() error {
		s.savepoints++
		name = fmt.Sprintf("sp_%d", s.savepoints)
		if err := s.conn.Exec(ctx, "SAVEPOINT "+name); err != nil {
			return s.coord.wrap("savepoint", err)
		}
		return nil
	})
	return name, err
}

func (s *Scope) exec(ctx context.Context, statement string) error {
	return s.Do(func() error {
		return s.conn.Exec(ctx, statement)
	})
}

// rollback issues ROLLBACK on behalf of cause. Failures are logged only.
func (s *Scope) rollback(ctx context.Context, cause error) {
	err := s.exec(context.WithoutCancel(ctx), "ROLLBACK")
	if err == nil {
		return
	}
	s.mu.Lock()
	s.broken = true
	s.mu.Unlock()
	s.coord.logger().Warn("transaction rollback failed", err, map[string]interface{}{
		"engine": string(s.coord.Engine),
		"cause":  cause.Error(),
	})
}

func (s *Scope) rollbackTo(ctx context.Context, name string, cause error) {
	ctx = context.WithoutCancel(ctx)
	err := s.exec(ctx, "ROLLBACK TO SAVEPOINT "+name)
	if err == nil {
		err = s.exec(ctx, "RELEASE SAVEPOINT "+name)
	}
	if err != nil {
		s.coord.logger().Warn("savepoint rollback failed", err, map[string]interface{}{
			"engine":    string(s.coord.Engine),
			"savepoint": name,
			"cause":     cause.Error(),
		})
	}
}

// close marks the scope released and reports whether its connection must be discarded.
func (s *Scope) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.broken
}
