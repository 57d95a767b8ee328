package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

// Metrics holds all Prometheus collectors for the HTTP surface and pipeline.
var Metrics = struct {
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	QuotaUnitsUsed   prometheus.GaugeFunc
	QuotaRemaining   prometheus.GaugeFunc
	APICalls         map[engine.EndpointKind]prometheus.GaugeFunc
	RunDuration      prometheus.Histogram
	CacheHits        prometheus.GaugeFunc
	CacheMisses      prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus collectors. Call once at startup.
func InitMetrics(ledger *engine.Ledger, budget int) {
	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotfinder_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by path, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotfinder_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.QuotaUnitsUsed = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hotfinder_quota_units_used",
			Help: "Quota units consumed this session.",
		},
		func() float64 { return float64(ledger.Snapshot().Units) },
	)

	Metrics.QuotaRemaining = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hotfinder_quota_units_remaining",
			Help: "Quota units left against the daily budget.",
		},
		func() float64 { return float64(ledger.Remaining(budget)) },
	)

	// One gauge per endpoint kind, read straight from the ledger so failed
	// runs and handle-resolution spend show up too.
	Metrics.APICalls = make(map[engine.EndpointKind]prometheus.GaugeFunc)
	for _, kind := range []engine.EndpointKind{engine.KindSearch, engine.KindVideos, engine.KindChannels} {
		Metrics.APICalls[kind] = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "hotfinder_api_calls",
				Help:        "Upstream API calls this session, by endpoint kind.",
				ConstLabels: prometheus.Labels{"kind": string(kind)},
			},
			func() float64 { return float64(ledger.Snapshot().Calls[kind]) },
		)
	}

	Metrics.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotfinder_run_duration_seconds",
			Help:    "Duration of collection runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	Metrics.CacheHits = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hotfinder_cache_hits_total",
			Help: "Memoization cache hits.",
		},
		func() float64 { hits, _ := engine.CacheStats(); return float64(hits) },
	)

	Metrics.CacheMisses = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hotfinder_cache_misses_total",
			Help: "Memoization cache misses.",
		},
		func() float64 { _, misses := engine.CacheStats(); return float64(misses) },
	)

	prometheus.MustRegister(
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.QuotaUnitsUsed,
		Metrics.QuotaRemaining,
		Metrics.RunDuration,
		Metrics.CacheHits,
		Metrics.CacheMisses,
	)
	for _, g := range Metrics.APICalls {
		prometheus.MustRegister(g)
	}
}

// MetricsMiddleware records request duration and in-flight count.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		Metrics.RequestsInFlight.Dec()
		status := strconv.Itoa(c.Response().StatusCode())
		Metrics.RequestDuration.WithLabelValues(path, method, status).Observe(time.Since(start).Seconds())
		return err
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
