package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the HTTP server that
// exposes it.
type Metrics struct {
	// Server serves the /metrics endpoint.
	Server *http.Server

	// Registry is the isolated registry all metrics are registered in.
	Registry *prometheus.Registry

	namespace  string
	registerer prometheus.Registerer

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	transactionsTotal *prometheus.CounterVec
	rowsTotal         *prometheus.CounterVec
}

// storageBuckets spans an in-process SQLite lookup up to a slow remote query.
var storageBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// NewMetrics initializes a dedicated registry with the storage metrics, wraps
// it with a constant service label and builds the HTTP server for it.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:     ":9090",
//	    Namespace:   "coach",
//	    ServiceName: "coach-api",
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)
	}

	m := &Metrics{
		Registry:   registry,
		namespace:  cfg.Namespace,
		registerer: registerer,
	}

	m.operationsTotal = m.newCounterVec("db_operations_total",
		"Total number of storage operations by engine, operation and status", []string{"engine", "operation", "status"})
	m.operationDuration = m.newHistogramVec("db_operation_duration_seconds",
		"Duration of storage operations in seconds", []string{"engine", "operation"}, storageBuckets)
	m.transactionsTotal = m.newCounterVec("db_transactions_total",
		"Total number of finished transactions by outcome", []string{"engine", "outcome"})
	m.rowsTotal = m.newCounterVec("db_rows_total",
		"Rows returned or affected by storage operations", []string{"engine", "operation"})

	registerer.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.transactionsTotal,
		m.rowsTotal,
	)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	addr := cfg.Address
	if addr == "" {
		addr = DefaultMetricsAddress
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.Server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return m
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := m.newCounterVec(name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := m.newHistogramVec(name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func (m *Metrics) newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Metrics) newHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}
