// Package sqlbind rewrites application SQL templates into the native
// placeholder syntax of a target engine and binds argument sets to them.
//
// Templates use one of two placeholder styles, never both:
//
//   - Positional: each `?` consumes the next argument in order.
//   - Named: each `@name` token is looked up in a Named argument set.
//
// Rewriting is done once per template by Compile, which tokenizes the text
// and records the slot layout. The resulting Compiled value is immutable and
// safe to cache and share between goroutines; Bind then produces the value
// slice for a concrete argument set.
//
// # Markers
//
// Question targets engines that understand `?` (SQLite). Positional
// templates pass through unchanged and named templates are rewritten to
// numbered `?N` parameters so a repeated name binds one value:
//
//	c, _ := sqlbind.Compile("UPDATE users SET name = @name WHERE name <> @name", sqlbind.Question)
//	// c.Text == "UPDATE users SET name = ?1 WHERE name <> ?1"
//
// Dollar targets PostgreSQL:
//
//	c, _ := sqlbind.Compile("SELECT * FROM coaches WHERE user_id = ? AND id = ?", sqlbind.Dollar)
//	// c.Text == "SELECT * FROM coaches WHERE user_id = $1 AND id = $2"
//
// # Missing keys
//
// A named template referencing a key the argument set does not carry binds
// NULL for that slot. Optional fields rely on this.
//
// # Literals
//
// The scanner does not recognise string literals or comments. A `?` or
// `@name` inside quotes is rewritten like any other token, so templates must
// be trusted application code. Add literal-aware scanning before using this
// package on SQL text that did not come from the application itself.
package sqlbind
