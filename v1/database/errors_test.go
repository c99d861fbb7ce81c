package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecoach/std/v1/sqlbind"
)

var errUnique = errors.New("UNIQUE constraint failed: users.google_id")

func classifyForTest(err error) (Kind, error) {
	if errors.Is(err, errUnique) {
		return KindConstraint, ErrDuplicateKey
	}
	return KindUnknown, nil
}

func TestWrap_KeepsEngineErrorAndTemplate(t *testing.T) {
	err := Wrap(EngineSQLite, "execute", "INSERT INTO users (google_id) VALUES (?)", errUnique, classifyForTest)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, EngineSQLite, se.Engine)
	assert.Equal(t, "INSERT INTO users (google_id) VALUES (?)", se.Template)
	assert.Equal(t, KindConstraint, se.Kind)
	assert.ErrorIs(t, err, errUnique)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, ErrConstraint)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrForeignKey)
	assert.True(t, IsConstraint(err))
	assert.False(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "INSERT INTO users")
}

func TestWrap_PassesThroughKnownErrors(t *testing.T) {
	assert.NoError(t, Wrap(EngineSQLite, "query", "", nil, nil))

	inner := Wrap(EnginePostgres, "query", "SELECT 1", errors.New("boom"), nil)
	assert.Same(t, inner, Wrap(EnginePostgres, "execute", "SELECT 2", inner, nil))

	_, bindErr := sqlbind.Translate("SELECT ?", sqlbind.Dollar)
	require.Error(t, bindErr)
	assert.Same(t, bindErr, Wrap(EnginePostgres, "query", "SELECT ?", bindErr, nil))
	assert.NotErrorIs(t, bindErr, ErrStorage)

	wrappedClosed := fmt.Errorf("execute: %w", ErrScopeClosed)
	assert.Same(t, wrappedClosed, Wrap(EngineSQLite, "execute", "", wrappedClosed, nil))
}

func TestWrap_DeadlineIsConnectivity(t *testing.T) {
	err := Wrap(EnginePostgres, "query", "SELECT pg_sleep(10)", context.DeadlineExceeded, nil)
	assert.Equal(t, KindConnectivity, KindOf(err))
	assert.True(t, IsRetryable(err))
}

func TestKindOf_NonStorageError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "constraint", KindConstraint.String())
}
