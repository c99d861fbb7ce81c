package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRow_KeepsColumnOrderAndNormalises(t *testing.T) {
	row := NewRow(
		[]string{"id", "name", "score", "active", "picture"},
		[]any{int32(4), "Coach", float32(1.5), true, nil},
	)

	assert.Equal(t, []string{"id", "name", "score", "active", "picture"}, row.Columns())
	assert.Equal(t, int64(4), row.Value("id"))
	assert.Equal(t, float64(1.5), row.Value("score"))
	assert.True(t, row.IsNull("picture"))
	assert.True(t, row.IsNull("missing"))

	_, ok := row.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 5, row.Len())
}

func TestRow_TypedAccessors(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	row := NewRow(
		[]string{"id", "text_id", "flag", "created_at", "sqlite_ts", "vital_signs"},
		[]any{int64(9), "12", int64(1), ts, "2024-03-01 10:30:00", `{"target":"sleep 8h"}`},
	)

	id, err := row.Int64("id")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	textID, err := row.Int64("text_id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), textID)

	flag, err := row.Bool("flag")
	require.NoError(t, err)
	assert.True(t, flag)

	created, err := row.Time("created_at")
	require.NoError(t, err)
	assert.True(t, created.Equal(ts))

	parsed, err := row.Time("sqlite_ts")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))

	var vitals map[string]string
	require.NoError(t, row.JSON("vital_signs", &vitals))
	assert.Equal(t, "sleep 8h", vitals["target"])

	_, err = row.Int64("vital_signs")
	assert.Error(t, err)
}

func TestRow_MapIsACopy(t *testing.T) {
	row := NewRow([]string{"email"}, []any{"a@b.com"})
	m := row.Map()
	m["email"] = "changed"
	assert.Equal(t, "a@b.com", row.String("email"))
}

func TestResult_HasInsertedID(t *testing.T) {
	assert.False(t, Result{RowsAffected: 3}.HasInsertedID())
	assert.True(t, Result{RowsAffected: 1, InsertedID: 5}.HasInsertedID())
}
