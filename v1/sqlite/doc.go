// Package sqlite implements database.Client on an embedded SQLite file using
// mattn/go-sqlite3 through sqlx.
//
// # Connections
//
// The engine serialises writers process-wide. The adapter adds no locking of
// its own; the database is opened in WAL journal mode so readers on other
// connections proceed while a writer commits, and a busy timeout absorbs
// short lock waits. By default one connection is used; in-memory databases
// always use exactly one.
//
// # Placeholders
//
// Positional `?` templates reach the driver unchanged. Named `@key`
// templates are rewritten to numbered `?N` parameters, so a key used twice
// binds a single value.
//
// # Prepared statements
//
// Prepare compiles a template once and caches the handle by template text;
// later Run, GetOne and All calls bind fresh arguments to the same compiled
// statement.
//
// # Transactions
//
//	err := db.WithTransaction(ctx, func(tx database.Client) error {
//	    _, err := tx.Execute(ctx, "DELETE FROM messages WHERE coach_id = ?", id)
//	    return err
//	})
//
// The scope pins one connection and issues BEGIN IMMEDIATE, COMMIT or
// ROLLBACK on it. A connection whose ROLLBACK failed is closed rather than
// returned to the pool.
//
// # Inserted identifiers
//
// Execute reports the rowid of a plain single-row INSERT. Upserts should use
// RETURNING, because an upsert that took the update path leaves the last
// insert rowid of an earlier statement in place.
package sqlite
