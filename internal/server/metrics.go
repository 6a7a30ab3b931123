package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/grapes/pkg/observability"
)

const metricsNamespace = "grapes"

// Metrics holds the Prometheus collectors of one server. It implements the
// observability hook interfaces so graph builds, version fallbacks, cache
// lookups and upstream HTTP calls are counted alongside API requests.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	graphNodes      *prometheus.HistogramVec
	graphBuild      *prometheus.HistogramVec
	traversed       *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	upstream        *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		graphNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Node count of built dependency graphs by identity.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		}, []string{"identity"}),
		graphBuild: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Dependency graph build time by identity.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"identity"}),
		traversed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "graph",
			Name:      "traversal_visited",
			Help:      "Nodes reached per traversal by direction.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"direction"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "version",
			Name:      "fallbacks_total",
			Help:      "Version comparisons that fell back because versions were incomparable.",
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by key type and result.",
		}, []string{"type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upstream",
			Name:      "responses_total",
			Help:      "Responses from remote repositories by host and status code.",
		}, []string{"host", "status"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Failed requests to remote repositories by host.",
		}, []string{"host"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration,
		m.graphNodes, m.graphBuild, m.traversed,
		m.fallbacks,
		m.cacheLookups, m.cacheBytes,
		m.upstream, m.upstreamErrors,
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetGraphHooks(m)
	observability.SetVersionHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeRequest(route, method string, status int, dur time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(dur.Seconds())
}

func (m *Metrics) OnBuild(_ context.Context, identity string, nodes, _ int, dur time.Duration) {
	m.graphNodes.WithLabelValues(identity).Observe(float64(nodes))
	m.graphBuild.WithLabelValues(identity).Observe(dur.Seconds())
}

func (m *Metrics) OnTraverse(_ context.Context, direction string, visited int) {
	m.traversed.WithLabelValues(direction).Observe(float64(visited))
}

func (m *Metrics) OnFallback(op string, _ error) {
	m.fallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, _ time.Duration) {
	m.upstream.WithLabelValues(host, strconv.Itoa(status)).Inc()
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.upstreamErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.GraphHooks   = (*Metrics)(nil)
	_ observability.VersionHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
