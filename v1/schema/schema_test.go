package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlite"
)

// legacyTables is the layout written by the first release, before coaches
// gained icon, created_at, goal, bio, vital_signs and trackings.
const legacyTables = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    google_id TEXT UNIQUE NOT NULL,
    email TEXT NOT NULL,
    name TEXT,
    picture TEXT,
    session_token TEXT
);
CREATE TABLE coaches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    system_instruction TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    FOREIGN KEY(user_id) REFERENCES users(id)
);`

func newSQLite(t *testing.T) *sqlite.SQLite {
	t.Helper()
	db, err := sqlite.NewSQLite(sqlite.Config{Path: filepath.Join(t.TempDir(), "coach.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.GracefulShutdown() })
	return db
}

func tableNames(t *testing.T, db database.Client) []string {
	t.Helper()
	rows, err := db.Query(context.Background(),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.String("name"))
	}
	return names
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)

	require.NoError(t, Bootstrap(ctx, db))
	require.NoError(t, Bootstrap(ctx, db))

	assert.Equal(t, []string{"activity_logs", "coaches", "messages", "users"}, tableNames(t, db))

	report, err := NewMigrator(db).Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Applied())
	assert.Len(t, report.Steps, len(DefaultSteps))
}

func TestMigrator_UpgradesLegacyDatabase(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	require.NoError(t, db.RunRaw(ctx, legacyTables))

	ctrl := gomock.NewController(t)
	log := database.NewMockLogger(ctrl)
	log.EXPECT().Info("migration step applied", nil, gomock.Any()).Times(len(DefaultSteps))
	log.EXPECT().Debug("migration step already applied", nil, gomock.Any()).AnyTimes()

	m := NewMigrator(db, WithLogger(log))

	plan, err := m.Plan(ctx)
	require.NoError(t, err)
	assert.Len(t, plan.Pending(), len(DefaultSteps))
	assert.Empty(t, plan.Applied())

	report, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"coaches_icon", "coaches_created_at", "coaches_goal",
		"coaches_bio", "coaches_vital_signs", "coaches_trackings",
	}, report.Applied())

	again, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Applied())
	for _, s := range again.Steps {
		assert.Equal(t, StatusPresent, s.Status, s.Name)
	}

	_, err = db.Execute(ctx, "INSERT INTO users (google_id, email) VALUES (?, ?)", "g1", "a@x")
	require.NoError(t, err)
	_, err = db.Execute(ctx,
		"INSERT INTO coaches (name, type, system_instruction, user_id, goal, trackings) VALUES (?, ?, ?, ?, ?, ?)",
		"Ada", "fitness", "be kind", 1, "run 5k", "[]")
	require.NoError(t, err)
}

func TestMigrator_MissingTableFails(t *testing.T) {
	db := newSQLite(t)

	_, err := NewMigrator(db, WithSteps(AddColumn{
		Name: "ghost_col", Table: "ghost", Column: "col", Definition: "TEXT",
	})).Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost_col")
}

func TestAddColumnIfMissing(t *testing.T) {
	ctx := context.Background()
	db := newSQLite(t)
	require.NoError(t, db.RunRaw(ctx, legacyTables))

	assert.True(t, AddColumnIfMissing(ctx, db, "coaches", "bio", "TEXT"))
	assert.False(t, AddColumnIfMissing(ctx, db, "coaches", "bio", "TEXT"))
}

func TestTables(t *testing.T) {
	ddl, err := Tables(database.EnginePostgres)
	require.NoError(t, err)
	assert.Contains(t, ddl, "SERIAL PRIMARY KEY")

	_, err = Tables(database.Engine("oracle"))
	assert.Error(t, err)
}

func TestAlterStatementQuotesIdentifiers(t *testing.T) {
	assert.Equal(t, `ALTER TABLE "coaches" ADD COLUMN "vital signs" TEXT`,
		alterStatement("coaches", "vital signs", "TEXT"))
}
