package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the WriteStream backend.
var Metrics = struct {
	TransactionsTotal *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
	RequestsInFlight  prometheus.Gauge
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	IndexBatchSize    prometheus.Histogram
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "writestream_transactions_total",
			Help: "Ledger transactions submitted, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writestream_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "writestream_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "writestream_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "writestream_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	Metrics.IndexBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "writestream_index_batch_size",
			Help:    "Number of ledger events per index flush.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "writestream_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "writestream_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.TransactionsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.IndexBatchSize,
	)
}

// observeTransaction records a ledger transaction outcome. Safe to call
// before InitMetrics (no-op), which keeps handler tests standalone.
func observeTransaction(op string, err error) {
	if Metrics.TransactionsTotal == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	Metrics.TransactionsTotal.WithLabelValues(op, outcome).Inc()
}

// observeCache records a cache hit or miss.
func observeCache(hit bool) {
	if Metrics.CacheHits == nil {
		return
	}
	if hit {
		Metrics.CacheHits.Inc()
	} else {
		Metrics.CacheMisses.Inc()
	}
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/articles/"):
		rest := path[len("/api/articles/"):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/api/articles/:id/" + rest[i+1:]
		}
		return "/api/articles/:id"
	case strings.HasPrefix(path, "/api/content/"):
		return "/api/content/:hash"
	default:
		return path
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
