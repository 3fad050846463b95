// Package metrics exposes Prometheus collectors for query execution and
// field resolution.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	events "github.com/hanpama/gqlcore/internal/events"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gqlcore"

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeFieldError = "field_error"
	OutcomeFatal      = "fatal"
)

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry      *prometheus.Registry
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	fieldDuration *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	grpcCalls     *prometheus.HistogramVec
}

// New creates the collectors. Go runtime and process collectors are
// registered as well when runtime is true.
func New(runtime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Executed GraphQL operations by operation type and outcome.",
		}, []string{"operation_type", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent executing GraphQL operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation_type"}),
		fieldDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "field_duration_seconds",
			Help:      "Time spent in field resolvers.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"field", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the GraphQL endpoint.",
		}, []string{"method", "code"}),
		grpcCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_client_duration_seconds",
			Help:      "Outgoing gRPC calls made by resolvers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "code"}),
	}
	m.registry.MustRegister(m.queries, m.queryDuration, m.fieldDuration, m.httpRequests, m.grpcCalls)
	if runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Subscribe records query, HTTP and gRPC client events published on the
// global bus.
func (m *Metrics) Subscribe() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(_ context.Context, e events.QueryFinish) {
			m.ObserveQuery(e)
		}),
		eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
			m.httpRequests.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Inc()
		}),
		eventbus.Subscribe(func(_ context.Context, e events.GRPCClientFinish) {
			m.grpcCalls.WithLabelValues(e.Service, e.Method, e.Code.String()).Observe(e.Duration.Seconds())
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// ObserveQuery records one finished query.
func (m *Metrics) ObserveQuery(e events.QueryFinish) {
	opType := e.OperationType
	if opType == "" {
		opType = "unknown"
	}
	outcome := OutcomeOK
	switch {
	case e.Err != nil:
		outcome = OutcomeFatal
	case len(e.Errors) > 0:
		outcome = OutcomeFieldError
	}
	m.queries.WithLabelValues(opType, outcome).Inc()
	m.queryDuration.WithLabelValues(opType).Observe(e.Duration.Seconds())
}

// Middleware times every field resolution. Introspection fields are not
// recorded.
func (m *Metrics) Middleware() schema.Middleware {
	return func(ctx context.Context, inv *schema.FieldInvocation, next schema.NextFunc) (any, error) {
		if isIntrospection(inv) {
			return next(ctx)
		}
		start := time.Now()
		v, err := next(ctx)
		m.fieldDuration.
			WithLabelValues(inv.ParentType.Name+"."+inv.Field.Name, fieldOutcome(err)).
			Observe(time.Since(start).Seconds())
		return v, err
	}
}

func fieldOutcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if _, ok := gqlerrors.AsExecutionError(err); ok {
		return OutcomeFieldError
	}
	return OutcomeFatal
}

func isIntrospection(inv *schema.FieldInvocation) bool {
	return strings.HasPrefix(inv.ParentType.Name, "__") || strings.HasPrefix(inv.Field.Name, "__")
}
