/*
Package repository stores the coaching application's records: users, their
coaches, chat messages and activity logs.

Every method goes through database.Client, so one Store serves SQLite and
Postgres alike. Statements use `@name` or `?` placeholders only, and no method
issues engine specific SQL.

Basic usage:

	db, err := storage.New(cfg, storage.Options{Logger: log})
	if err != nil {
		return err
	}
	if _, err := storage.Prepare(ctx, db, log); err != nil {
		return err
	}

	store := repository.New(db, repository.WithLogger(log))
	user, err := store.UpsertUser(ctx, repository.GoogleUser{
		GoogleID: "g-123",
		Email:    "ada@example.com",
		Name:     "Ada",
	})

Lookups return (value, found, error). A missing record is not an error.

Ownership:

Coaches, messages and activity logs belong to a user. Methods that list,
update or delete them take the owning user id and never touch another user's
records. CoachByID is the one lookup that ignores ownership; use OwnedCoach
when serving a request.
*/
package repository
