package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerb(t *testing.T) {
	assert.Equal(t, "INSERT", Verb("  insert into users values (1)"))
	assert.Equal(t, "UPDATE", Verb("-- bump\nUPDATE coaches SET goal = ?"))
	assert.Equal(t, "SELECT", Verb("/* lookup */ SELECT 1"))
	assert.Equal(t, "", Verb(""))
}

func TestEffectFromRows(t *testing.T) {
	insert := "INSERT INTO coaches (name) VALUES (?) RETURNING *"
	one := []Row{NewRow([]string{"id", "name"}, []any{int64(12), "Sleep"})}

	assert.Equal(t, Result{RowsAffected: 1, InsertedID: 12}, EffectFromRows(insert, one))

	two := append(one, NewRow([]string{"id", "name"}, []any{int64(13), "Run"}))
	assert.Equal(t, Result{RowsAffected: 2}, EffectFromRows(insert, two))

	update := "UPDATE coaches SET name = ? RETURNING id"
	assert.Equal(t, Result{RowsAffected: 1}, EffectFromRows(update, one))

	noID := []Row{NewRow([]string{"rowid"}, []any{int64(5)})}
	assert.Equal(t, Result{RowsAffected: 1, InsertedID: 5}, EffectFromRows("INSERT INTO t DEFAULT VALUES RETURNING rowid", noID))

	assert.True(t, HasReturning("insert into t values (1) returning id"))
	assert.False(t, HasReturning("SELECT returning_customer FROM t"))
}

func TestIsUpsert(t *testing.T) {
	assert.True(t, IsUpsert("INSERT INTO users (google_id) VALUES (?)\nON CONFLICT(google_id) DO UPDATE SET name = excluded.name"))
	assert.True(t, IsUpsert("insert into t (k) values (?) on conflict (k)\n  do update set v = 1"))
	assert.False(t, IsUpsert("INSERT INTO t (k) VALUES (?) ON CONFLICT DO NOTHING"))
	assert.False(t, IsUpsert("INSERT INTO t (k) VALUES (?)"))
	assert.False(t, IsUpsert("UPDATE t SET v = 1"))
}
