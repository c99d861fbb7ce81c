package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    google_id TEXT UNIQUE NOT NULL,
    email TEXT,
    name TEXT,
    picture TEXT,
    session_token TEXT
);
CREATE TABLE IF NOT EXISTS coaches (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id),
    name TEXT NOT NULL,
    goal TEXT,
    vital_signs JSONB
);`

const upsertUser = `INSERT INTO users (google_id, email, name, picture, session_token)
VALUES (@google_id, @email, @name, @picture, @session_token)
ON CONFLICT(google_id) DO UPDATE SET
    session_token = @session_token,
    name = @name,
    picture = @picture,
    email = COALESCE(NULLIF(@email, ''), users.email)
RETURNING *`

// PostgresContainer represents a Postgres container for testing
type PostgresContainer struct {
	testcontainers.Container
	Config Config
}

// setupPostgresContainer starts postgres:15 and waits until it accepts
// connections. The ready line is logged once by the init server and once by
// the real one.
func setupPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image: "postgres:15",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Config: Config{
			Connection: Connection{
				Host:     host,
				Port:     mappedPort.Port(),
				User:     "testuser",
				Password: "testpass",
				DbName:   "testdb",
			},
			ConnectionDetails: ConnectionDetails{MaxOpenConns: 8},
		},
	}, nil
}

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	ctrl := gomock.NewController(t)
	mockLogger := database.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	pg, err := NewPostgres(container.Config, WithLogger(mockLogger))
	require.NoError(t, err)
	defer func() { _ = pg.GracefulShutdown() }()

	require.NoError(t, pg.RunRaw(ctx, testSchema))

	reset := func(t *testing.T) {
		require.NoError(t, pg.RunRaw(ctx, "TRUNCATE coaches, users RESTART IDENTITY CASCADE"))
	}

	t.Run("NamedUpsertPreservesEmail", func(t *testing.T) {
		reset(t)
		row, ok, err := pg.GetOne(ctx, upsertUser, sqlbind.Named{
			"google_id": "g1", "email": "a@x", "name": "A", "picture": "", "session_token": "t1",
		})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "a@x", row.String("email"))

		row, ok, err = pg.GetOne(ctx, upsertUser, sqlbind.Named{
			"google_id": "g1", "email": "", "name": "A2", "picture": "", "session_token": "t2",
		})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "a@x", row.String("email"))
		assert.Equal(t, "A2", row.String("name"))
		assert.Equal(t, "t2", row.String("session_token"))
	})

	t.Run("InsertReturningReportsInsertedID", func(t *testing.T) {
		reset(t)
		res, err := pg.Execute(ctx, "INSERT INTO users (google_id) VALUES (?) RETURNING id", "g1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.RowsAffected)
		assert.Equal(t, int64(1), res.InsertedID)

		res, err = pg.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "g2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.RowsAffected)
		assert.False(t, res.HasInsertedID())
	})

	t.Run("UpdateReportsRowsAffectedOnly", func(t *testing.T) {
		reset(t)
		for _, id := range []string{"a", "b", "c"} {
			_, err := pg.Execute(ctx, "INSERT INTO users (google_id, name) VALUES (?, ?)", id, "old")
			require.NoError(t, err)
		}
		res, err := pg.Execute(ctx, "UPDATE users SET name = ? WHERE name = ?", "new", "old")
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.RowsAffected)
		assert.Equal(t, int64(0), res.InsertedID)
	})

	t.Run("JSONColumnsReadAsText", func(t *testing.T) {
		reset(t)
		row, _, err := pg.GetOne(ctx, "INSERT INTO users (google_id) VALUES (?) RETURNING id", "g1")
		require.NoError(t, err)
		userID, err := row.Int64("id")
		require.NoError(t, err)

		_, err = pg.Execute(ctx, "INSERT INTO coaches (user_id, name, vital_signs) VALUES (?, ?, ?::jsonb)",
			userID, "Coach", `{"sleep":8}`)
		require.NoError(t, err)

		row, ok, err := pg.GetOne(ctx, "SELECT vital_signs FROM coaches WHERE user_id = ?", userID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"sleep":8}`, row.String("vital_signs"))
	})

	t.Run("ConstraintViolations", func(t *testing.T) {
		reset(t)
		_, err := pg.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "dup")
		require.NoError(t, err)

		_, err = pg.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "dup")
		require.Error(t, err)
		assert.ErrorIs(t, err, database.ErrDuplicateKey)
		assert.True(t, database.IsConstraint(err))

		_, err = pg.Execute(ctx, "INSERT INTO coaches (user_id, name) VALUES (?, ?)", 999, "ghost")
		assert.ErrorIs(t, err, database.ErrForeignKey)
	})

	t.Run("RollbackLeavesNoWrite", func(t *testing.T) {
		reset(t)
		boom := errors.New("boom")
		err := pg.WithTransaction(ctx, func(tx database.Client) error {
			if _, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "tx"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, ok, err := pg.GetOne(ctx, "SELECT id FROM users WHERE google_id = ?", "tx")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("NestedRollsBackInnerOnly", func(t *testing.T) {
		reset(t)
		err := pg.WithTransaction(ctx, func(tx database.Client) error {
			if _, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "outer"); err != nil {
				return err
			}
			inner := tx.WithTransaction(ctx, func(tx database.Client) error {
				if _, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "inner"); err != nil {
					return err
				}
				return errors.New("inner failed")
			})
			assert.Error(t, inner)
			return nil
		})
		require.NoError(t, err)

		rows, err := pg.Query(ctx, "SELECT google_id FROM users ORDER BY id")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "outer", rows[0].String("google_id"))
	})

	t.Run("LeakedScopeFails", func(t *testing.T) {
		reset(t)
		var leaked database.Client
		require.NoError(t, pg.WithTransaction(ctx, func(tx database.Client) error {
			leaked = tx
			return nil
		}))
		_, err := leaked.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "late")
		assert.ErrorIs(t, err, database.ErrScopeClosed)
	})

	t.Run("SwallowedStatementFailureFailsCommit", func(t *testing.T) {
		reset(t)
		_, err := pg.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "taken")
		require.NoError(t, err)

		err = pg.WithTransaction(ctx, func(tx database.Client) error {
			if _, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "fresh"); err != nil {
				return err
			}
			_, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", "taken")
			if !errors.Is(err, database.ErrDuplicateKey) {
				return fmt.Errorf("expected duplicate key, got %v", err)
			}
			// deduplicated by the caller; the aborted transaction cannot commit
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, database.ErrCommitFailed)
		assert.ErrorIs(t, err, pgx.ErrTxCommitRollback)

		_, ok, err := pg.GetOne(ctx, "SELECT id FROM users WHERE google_id = ?", "fresh")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ConcurrentScopesAreIsolated", func(t *testing.T) {
		reset(t)
		insertedA, insertedB := make(chan struct{}), make(chan struct{})
		checkedA, checkedB := make(chan struct{}), make(chan struct{})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(isolatedWriter(gctx, pg, "writer-a", "writer-b", insertedA, insertedB, checkedA, checkedB))
		g.Go(isolatedWriter(gctx, pg, "writer-b", "writer-a", insertedB, insertedA, checkedB, checkedA))
		require.NoError(t, g.Wait())

		rows, err := pg.Query(ctx, "SELECT google_id FROM users ORDER BY google_id")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "writer-a", rows[0].String("google_id"))
		assert.Equal(t, "writer-b", rows[1].String("google_id"))
	})

	t.Run("PreparedStatement", func(t *testing.T) {
		reset(t)
		stmt, err := pg.Prepare(ctx, "INSERT INTO users (google_id, name) VALUES (@id, @name) RETURNING id")
		require.NoError(t, err)

		for i, id := range []string{"p1", "p2"} {
			res, err := stmt.Run(ctx, sqlbind.Named{"id": id, "name": "P"})
			require.NoError(t, err)
			assert.Equal(t, int64(i+1), res.InsertedID)
		}

		_, err = pg.Prepare(ctx, "SELECT * FROM users WHERE id = ? AND name = @name")
		assert.ErrorIs(t, err, sqlbind.ErrMixedPlaceholders)
	})
}

// isolatedWriter inserts own inside a transaction, waits until the peer
// scope has inserted too, then checks that own is visible and peer is not.
// Both scopes finish their checks before either commits.
func isolatedWriter(ctx context.Context, pg *Postgres, own, peer string,
	inserted chan<- struct{}, peerInserted <-chan struct{},
	checked chan<- struct{}, peerChecked <-chan struct{},
) func() error {
	return func() error {
		return pg.WithTransaction(ctx, func(tx database.Client) error {
			if _, err := tx.Execute(ctx, "INSERT INTO users (google_id) VALUES (?)", own); err != nil {
				return err
			}
			if err := rendezvous(ctx, inserted, peerInserted); err != nil {
				return err
			}

			_, ok, err := tx.GetOne(ctx, "SELECT id FROM users WHERE google_id = ?", own)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: own uncommitted row not visible", own)
			}
			_, ok, err = tx.GetOne(ctx, "SELECT id FROM users WHERE google_id = ?", peer)
			if err != nil {
				return err
			}
			if ok {
				return fmt.Errorf("%s: uncommitted row of %s visible", own, peer)
			}
			return rendezvous(ctx, checked, peerChecked)
		})
	}
}

// rendezvous signals mine and waits for theirs, giving up when ctx ends.
func rendezvous(ctx context.Context, mine chan<- struct{}, theirs <-chan struct{}) error {
	close(mine)
	select {
	case <-theirs:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPostgresWithFXModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	var pg *Postgres
	app := fxtest.New(t,
		fx.Provide(func() Config { return container.Config }),
		FXModule,
		fx.Populate(&pg),
	)
	app.RequireStart()

	require.NotNil(t, pg)
	assert.True(t, pg.Healthy())
	row, ok, err := pg.GetOne(ctx, "SELECT 1 AS one")
	require.NoError(t, err)
	require.True(t, ok)
	one, err := row.Int64("one")
	require.NoError(t, err)
	assert.Equal(t, int64(1), one)

	app.RequireStop()

	err = pg.Ping(ctx)
	assert.ErrorIs(t, err, database.ErrClientClosed)
}
