// Package database defines the storage contract shared by every SQL engine
// in this module.
//
// The package holds no engine code. It declares the Client interface, the
// Row and Result shapes, the error taxonomy and the transaction Coordinator
// the engine adapters build on.
//
// # Implementations
//
//   - sqlite.SQLite: embedded single-file engine, one process-wide connection
//   - postgres.Postgres: networked engine behind a connection pool
//
// storage.New picks one from configuration at process start.
//
// # Philosophy
//
// Applications depend on database.Client and never embed engine-specific
// SQL dialect choices in call sites:
//
//	type CoachRepository struct {
//	    db database.Client
//	}
//
//	func NewCoachRepository(db database.Client) *CoachRepository {
//	    return &CoachRepository{db: db}
//	}
//
// # Placeholders
//
// Templates use positional `?` markers or named `@key` markers, never both:
//
//	rows, err := db.Query(ctx, "SELECT * FROM coaches WHERE user_id = ?", userID)
//
//	row, ok, err := db.GetOne(ctx,
//	    "SELECT * FROM users WHERE session_token = @token",
//	    sqlbind.Named{"token": token})
//
// Named keys missing from the argument set bind NULL. Placeholder misuse
// fails before the engine is called with an error matching sqlbind.ErrBinding.
//
// # Results
//
// GetOne reports "no row" through its boolean, not through an error:
//
//	row, ok, err := db.GetOne(ctx, "SELECT * FROM coaches WHERE id = ?", id)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    return ErrCoachNotFound
//	}
//
// Execute returns a Result. InsertedID is filled for single-row inserts that
// request it with a RETURNING clause on either engine, and for plain
// single-row inserts on SQLite:
//
//	res, err := db.Execute(ctx, "INSERT INTO messages (coach_id, user_id, role, content) VALUES (?, ?, ?, ?) RETURNING id",
//	    coachID, userID, "user", text)
//	// res.RowsAffected == 1, res.InsertedID > 0
//
// # Transactions
//
// WithTransaction pins one connection for the duration of fn:
//
//	err := db.WithTransaction(ctx, func(tx database.Client) error {
//	    if _, err := tx.Execute(ctx, "DELETE FROM messages WHERE coach_id = ?", id); err != nil {
//	        return err // rolled back
//	    }
//	    _, err := tx.Execute(ctx, "DELETE FROM coaches WHERE id = ?", id)
//	    return err // nil commits
//	})
//
// Calling WithTransaction on tx does not BEGIN again. The inner work runs in
// a SAVEPOINT, so an inner failure undoes only the inner writes when the
// outer work chooses to continue. Commit happens once, in the outermost call.
//
// Using tx after WithTransaction has returned fails with ErrScopeClosed.
//
// # Errors
//
// Engine failures come back as *StorageError holding the original engine
// error and the template:
//
//	switch {
//	case errors.Is(err, database.ErrDuplicateKey):
//	    // unique violation
//	case errors.Is(err, database.ErrForeignKey):
//	    // missing parent row
//	case database.IsRetryable(err):
//	    // connectivity, the caller decides whether to retry
//	}
//
// # Observability
//
// Adapters report every finished operation to an Observer. The metrics and
// tracer packages provide implementations.
package database
