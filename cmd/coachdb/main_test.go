package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"COACH_ENGINE", "DATABASE_URL", "SQLITE_PATH", "COACH_SQLITE_SQLITE_PATH"} {
		// Setenv restores the original value on cleanup.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "coachdb.yaml")
	body := "engine: sqlite\nsqlite:\n  path: " + filepath.Join(dir, "coach.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_MigrateThenStatus(t *testing.T) {
	cfg := writeConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	code := run(ctx, []string{"--config", cfg, "migrate"}, &out, &bytes.Buffer{})
	require.Equal(t, ExitOK, code, out.String())
	assert.Contains(t, out.String(), "engine: sqlite")
	assert.Contains(t, out.String(), "0 pending")

	out.Reset()
	code = run(ctx, []string{"-c", cfg, "status", "--json"}, &out, &bytes.Buffer{})
	require.Equal(t, ExitOK, code, out.String())

	var report reportJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "sqlite", report.Engine)
	assert.Zero(t, report.Pending)
	require.NotEmpty(t, report.Steps)
	for _, s := range report.Steps {
		assert.Equal(t, "present", s.Status, s.Name)
	}
}

func TestRun_Ping(t *testing.T) {
	cfg := writeConfig(t)

	var out bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, "ping"}, &out, &bytes.Buffer{})
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out.String(), "sqlite: ok")
}

func TestRun_StatusBeforeMigrateFails(t *testing.T) {
	cfg := writeConfig(t)

	var out, stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, "status"}, &out, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Empty(t, out.String())
	assert.Contains(t, stderr.String(), "Error: status unavailable")
}

func TestRun_OpenFailureGoesToStderr(t *testing.T) {
	writeConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "coachdb.yaml")
	body := "engine: sqlite\nsqlite:\n  path: " + filepath.Join(dir, "missing", "coach.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var out, stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", path, "migrate"}, &out, &stderr)
	assert.Equal(t, ExitError, code)
	assert.Empty(t, out.String())
	assert.Contains(t, stderr.String(), "Error: failed to open database")
}

func TestRun_ContinuesCallerTrace(t *testing.T) {
	cfg := writeConfig(t)
	t.Setenv("TRACEPARENT", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	t.Setenv("BAGGAGE", "deploy=42")
	t.Setenv("TRACER_ENABLE_EXPORT", "false")

	var out bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, "migrate"}, &out, &bytes.Buffer{})
	require.Equal(t, ExitOK, code, out.String())
	assert.Contains(t, out.String(), "0 pending")
}

func TestRun_BadTracerConfig(t *testing.T) {
	cfg := writeConfig(t)
	t.Setenv("TRACER_ENABLE_EXPORT", "maybe")

	var stderr bytes.Buffer
	code := run(context.Background(), []string{"--config", cfg, "ping"}, &bytes.Buffer{}, &stderr)
	assert.Equal(t, ExitConfig, code)
	assert.Contains(t, stderr.String(), "tracer config")
}

func TestRun_UsageErrors(t *testing.T) {
	ctx := context.Background()
	var stderr bytes.Buffer

	assert.Equal(t, ExitUsage, run(ctx, nil, &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "Usage: coachdb")

	stderr.Reset()
	assert.Equal(t, ExitUsage, run(ctx, []string{"drop"}, &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), `unknown command "drop"`)

	assert.Equal(t, ExitOK, run(ctx, []string{"--help"}, &bytes.Buffer{}, &bytes.Buffer{}))

	stderr.Reset()
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	assert.Equal(t, ExitConfig, run(ctx, []string{"--config", missing, "ping"}, &bytes.Buffer{}, &stderr))
	assert.Contains(t, stderr.String(), "read config")
}
