package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	TasksCreated *prometheus.CounterVec
	TasksDeleted prometheus.Counter
	EdgesCreated prometheus.Counter

	// Workspace mutation metrics
	Mutations        *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TasksCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_created_total",
				Help:      "Total number of tasks created",
			},
			[]string{"source"},
		),
		TasksDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_deleted_total",
				Help:      "Total number of tasks removed, descendants included",
			},
		),
		EdgesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_created_total",
				Help:      "Total number of edges created",
			},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workspace_mutations_total",
				Help:      "Total number of workspace mutations by outcome",
			},
			[]string{"operation", "status"},
		),
		MutationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workspace_mutation_duration_seconds",
				Help:      "Workspace mutation duration in seconds, persistence included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of workspace cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of workspace cache misses",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.TasksCreated,
		c.TasksDeleted,
		c.EdgesCreated,
		c.Mutations,
		c.MutationDuration,
		c.CacheHits,
		c.CacheMisses,
	)

	return c
}

// IncrementCounterBy increments a counter metric by the specified value.
// Unknown names are ignored.
func (c *Collector) IncrementCounterBy(name string, value float64, tags map[string]string) {
	switch name {
	case "tasks_created":
		source := tags["source"]
		if source == "" {
			source = "manual"
		}
		c.TasksCreated.WithLabelValues(source).Add(value)
	case "tasks_deleted":
		c.TasksDeleted.Add(value)
	case "edges_created":
		c.EdgesCreated.Add(value)
	case "cache_hits":
		c.CacheHits.Add(value)
	case "cache_misses":
		c.CacheMisses.Add(value)
	}
}

// ObserveDuration records a duration metric. Unknown names are ignored.
func (c *Collector) ObserveDuration(name string, d time.Duration, tags map[string]string) {
	switch name {
	case "workspace_mutation":
		c.MutationDuration.WithLabelValues(tags["operation"]).Observe(d.Seconds())
		c.Mutations.WithLabelValues(tags["operation"], tags["status"]).Inc()
	}
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Noop discards every measurement
type Noop struct{}

func (Noop) IncrementCounterBy(string, float64, map[string]string)    {}
func (Noop) ObserveDuration(string, time.Duration, map[string]string) {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration)     {}
