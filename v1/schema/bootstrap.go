package schema

import (
	"context"
	"fmt"

	"github.com/lifecoach/std/v1/database"
)

const sqliteTables = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    google_id TEXT UNIQUE NOT NULL,
    email TEXT NOT NULL,
    name TEXT,
    picture TEXT,
    session_token TEXT
);

CREATE TABLE IF NOT EXISTS coaches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    system_instruction TEXT NOT NULL,
    icon TEXT,
    user_id INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    goal TEXT,
    bio TEXT,
    vital_signs TEXT,
    trackings TEXT,
    FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    coach_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    role TEXT CHECK(role IN ('user', 'model')) NOT NULL,
    content TEXT NOT NULL,
    timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(coach_id) REFERENCES coaches(id),
    FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    coach_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    data TEXT NOT NULL,
    feedback TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(coach_id) REFERENCES coaches(id),
    FOREIGN KEY(user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_coach_user ON messages(coach_id, user_id);
CREATE INDEX IF NOT EXISTS idx_activity_logs_coach_user ON activity_logs(coach_id, user_id);
`

const postgresTables = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    google_id TEXT UNIQUE NOT NULL,
    email TEXT NOT NULL,
    name TEXT,
    picture TEXT,
    session_token TEXT
);

CREATE TABLE IF NOT EXISTS coaches (
    id SERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    system_instruction TEXT NOT NULL,
    icon TEXT,
    user_id INTEGER NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ DEFAULT NOW(),
    goal TEXT,
    bio TEXT,
    vital_signs TEXT,
    trackings TEXT
);

CREATE TABLE IF NOT EXISTS messages (
    id SERIAL PRIMARY KEY,
    coach_id INTEGER NOT NULL REFERENCES coaches(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    role TEXT CHECK(role IN ('user', 'model')) NOT NULL,
    content TEXT NOT NULL,
    timestamp TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id SERIAL PRIMARY KEY,
    coach_id INTEGER NOT NULL REFERENCES coaches(id),
    user_id INTEGER NOT NULL REFERENCES users(id),
    data TEXT NOT NULL,
    feedback TEXT,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_messages_coach_user ON messages(coach_id, user_id);
CREATE INDEX IF NOT EXISTS idx_activity_logs_coach_user ON activity_logs(coach_id, user_id);
`

// Tables returns the CREATE TABLE batch for an engine.
func Tables(engine database.Engine) (string, error) {
	switch engine {
	case database.EngineSQLite:
		return sqliteTables, nil
	case database.EnginePostgres:
		return postgresTables, nil
	}
	return "", fmt.Errorf("schema: unsupported engine %q", engine)
}

// Bootstrap creates every application table that does not exist yet.
// Running it against an existing database changes nothing.
func Bootstrap(ctx context.Context, c database.Client) error {
	ddl, err := Tables(c.Engine())
	if err != nil {
		return err
	}
	if err := c.RunRaw(ctx, ddl); err != nil {
		return fmt.Errorf("failed to bootstrap schema: %w", err)
	}
	return nil
}

// AddColumnIfMissing issues ALTER TABLE ... ADD COLUMN and ignores any
// failure, on the assumption that the column is already there. It reports
// whether the statement succeeded. Prefer Migrator, which checks the catalog
// instead of guessing from the error.
func AddColumnIfMissing(ctx context.Context, c database.Client, table, column, definition string) bool {
	return c.RunRaw(ctx, alterStatement(table, column, definition)) == nil
}
