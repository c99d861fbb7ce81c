package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlite"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coach.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeFile(t, `
engine: postgres
postgres:
  connection:
    host: db.internal
    user: coach
    db_name: coach
  connection_details:
    max_open_conns: 12
    health_check_interval: 30s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, database.EnginePostgres, cfg.EngineName())
	assert.Equal(t, "db.internal", cfg.Postgres.Connection.Host)
	assert.Equal(t, 12, cfg.Postgres.ConnectionDetails.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.Postgres.ConnectionDetails.HealthCheckInterval)
}

func TestLoadConfig_EnvironmentOverridesYAML(t *testing.T) {
	path := writeFile(t, "engine: sqlite\nsqlite:\n  path: from-yaml.db\n")
	t.Setenv("COACH_SQLITE_SQLITE_PATH", "from-env.db")
	t.Setenv("COACH_AUTO_MIGRATE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.SQLite.Path)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadConfig_DatabaseURLSelectsPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://coach@localhost/coach")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Engine)
	assert.Equal(t, "postgres://coach@localhost/coach", cfg.Postgres.URL)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "engine: oracle\n"))
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
}

func TestNew_SQLite(t *testing.T) {
	cfg := SQLiteConfig(sqlite.Config{Path: sqlite.MemoryPath})
	db, err := New(cfg, Options{})
	require.NoError(t, err)
	defer func() { _ = db.GracefulShutdown() }()

	assert.Equal(t, database.EngineSQLite, db.Engine())
	report, err := Prepare(context.Background(), db, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Applied())
}

func TestNew_UnsupportedEngine(t *testing.T) {
	_, err := New(Config{Engine: "oracle"}, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedEngine)
}

func TestFXModule_SQLite(t *testing.T) {
	cfg := SQLiteConfig(sqlite.Config{Path: filepath.Join(t.TempDir(), "coach.db")})
	cfg.AutoMigrate = true

	var client database.Client
	app := fxtest.New(t,
		fx.Provide(func() Config { return cfg }),
		FXModule,
		fx.Populate(&client),
	)
	app.RequireStart()

	ctx := context.Background()
	res, err := client.Execute(ctx, "INSERT INTO users (google_id, email) VALUES (?, ?)", "g1", "a@x")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.InsertedID)

	app.RequireStop()

	_, err = client.Query(ctx, "SELECT * FROM users")
	assert.ErrorIs(t, err, database.ErrClientClosed)
}
