package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipecrafter"

// Outcome labels shared by the lookup and generation counters
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics owns a private Prometheus registry and the collectors registered on
// it. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	pantryMutations   *prometheus.CounterVec
	recipeGenerations *prometheus.CounterVec
	imageLookups      *prometheus.CounterVec
	imageCacheHits    prometheus.Counter
}

// New creates a registry with process and Go runtime collectors plus the
// application collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		pantryMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pantry_mutations_total",
			Help:      "Pantry mutations by operation.",
		}, []string{"op"}),
		recipeGenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_generations_total",
			Help:      "Recipe generation attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		imageLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_lookups_total",
			Help:      "Ingredient image lookups by provider and outcome.",
		}, []string{"provider", "outcome"}),
		imageCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_cache_hits_total",
			Help:      "Ingredient image lookups served from cache.",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency keyed by the matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) PantryMutation(op string) {
	if m == nil {
		return
	}
	m.pantryMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) RecipeGeneration(provider, outcome string) {
	if m == nil {
		return
	}
	m.recipeGenerations.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ImageLookup(provider, outcome string) {
	if m == nil {
		return
	}
	m.imageLookups.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ImageCacheHit() {
	if m == nil {
		return
	}
	m.imageCacheHits.Inc()
}
