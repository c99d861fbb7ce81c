package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lifecoach/std/v1/database"
)

// MetricsCollector provides storage metrics and factories for custom ones.
//
// This interface is implemented by the concrete *Metrics type.
type MetricsCollector interface {
	database.Observer

	// RecordOperation counts one storage operation and records its duration.
	RecordOperation(engine, operation, status string, duration time.Duration)

	// RecordTransaction counts one finished transaction by outcome.
	RecordTransaction(engine, outcome string)

	// CreateCounter creates a new CounterVec metric and registers it.
	CreateCounter(name, help string, labels []string) *prometheus.CounterVec

	// CreateHistogram creates a new HistogramVec metric and registers it.
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec

	// CreateGauge creates a new GaugeVec metric and registers it.
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
