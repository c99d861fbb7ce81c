package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "coach-test"})

	m.ObserveOperation(database.OperationContext{
		Component: "sqlite", Operation: "query", Duration: 2 * time.Millisecond, Size: 3,
	})
	m.ObserveOperation(database.OperationContext{
		Component: "sqlite", Operation: "execute",
		Error: &database.StorageError{Kind: database.KindConstraint, Err: errors.New("UNIQUE")},
	})
	m.ObserveOperation(database.OperationContext{
		Component: "postgres", Operation: "query",
		Error: fmt.Errorf("%w: boom", sqlbind.ErrArgumentCount),
	})
	m.ObserveOperation(database.OperationContext{
		Component: "sqlite", Operation: "query", Error: database.ErrScopeClosed,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("sqlite", "query", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("sqlite", "execute", "constraint")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("postgres", "query", StatusBinding)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("sqlite", "query", StatusClosed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues("sqlite", "query")))
}

func TestObserveOperation_Transactions(t *testing.T) {
	m := NewMetrics(Config{})

	for _, outcome := range []string{"commit", "commit", "rollback"} {
		m.ObserveOperation(database.OperationContext{
			Component: "postgres",
			Operation: "transaction",
			Metadata:  map[string]interface{}{"outcome": outcome},
		})
	}
	m.ObserveOperation(database.OperationContext{
		Component: "postgres",
		Operation: "savepoint",
		Metadata:  map[string]interface{}{"outcome": "release"},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactionsTotal.WithLabelValues("postgres", "commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactionsTotal.WithLabelValues("postgres", "rollback")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.transactionsTotal.WithLabelValues("postgres", "release")))
}

func TestNamespaceAndEndpoint(t *testing.T) {
	m := NewMetrics(Config{Namespace: "coach", ServiceName: "coach-test"})
	m.RecordOperation("sqlite", "get_one", StatusOK, time.Millisecond)
	m.CreateCounter("logins_total", "Successful logins", []string{"provider"}).WithLabelValues("google").Inc()

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `coach_db_operations_total{engine="sqlite",operation="get_one",service="coach-test",status="ok"} 1`)
	assert.Contains(t, body, `coach_logins_total{provider="google",service="coach-test"} 1`)
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}
