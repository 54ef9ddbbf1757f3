// Package metrics exposes prometheus collectors for storage reads, GraphQL
// operations and HTTP requests.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syssam/chinook/dialect/sql"
	"github.com/syssam/chinook/graph"
)

const namespace = "chinook"

// Operation outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeFieldError   = "field_error"
	OutcomeRequestError = "request_error"
)

// Metrics holds the collectors of one process. Each Metrics owns its
// registry, so tests can create as many as they need.
type Metrics struct {
	reg *prometheus.Registry

	queries           *prometheus.CounterVec
	queryDuration     prometheus.Histogram
	operations        *prometheus.CounterVec
	operationDuration prometheus.Histogram
	fieldErrors       *prometheus.CounterVec
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// New returns Metrics registered on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		// Labels: class (ok, canceled, connection, busy, schema, query)
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "queries_total",
			Help:      "Storage reads by outcome class",
		}, []string{"class"}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Storage read latency",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		// Labels: outcome (ok, field_error, request_error)
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "operations_total",
			Help:      "GraphQL requests by outcome",
		}, []string{"outcome"}),
		operationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "operation_duration_seconds",
			Help:      "GraphQL request latency, parse to response",
			Buckets:   prometheus.DefBuckets,
		}),
		// Labels: code (extensions.code of the error)
		fieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graphql",
			Name:      "errors_total",
			Help:      "GraphQL errors by code",
		}, []string{"code"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveQuery records one storage read. It has the shape of
// sql.QueryObserver and is meant for sql.WithQueryObserver.
func (m *Metrics) ObserveQuery(_ context.Context, _ string, d time.Duration, err error) {
	class := "ok"
	if err != nil {
		class = sql.Classify(err)
	}
	m.queries.WithLabelValues(class).Inc()
	m.queryDuration.Observe(d.Seconds())
}

var _ graph.Observer = (*Metrics)(nil)

// ObserveOperation records one GraphQL request.
func (m *Metrics) ObserveOperation(_ string, took time.Duration, resp *graph.Response) {
	outcome := OutcomeOK
	switch {
	case !resp.Executed:
		outcome = OutcomeRequestError
	case resp.HasErrors():
		outcome = OutcomeFieldError
	}
	m.operations.WithLabelValues(outcome).Inc()
	m.operationDuration.Observe(took.Seconds())
	for _, code := range resp.Codes() {
		m.fieldErrors.WithLabelValues(code).Inc()
	}
}

// ObserveRequest records one HTTP request. route is the matched route
// pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}
