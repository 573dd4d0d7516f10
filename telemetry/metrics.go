package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fastBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	httpBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
)

// AppInfo is exported as the labels of chat_app_info
type AppInfo struct {
	Name    string
	Version string
	Env     string
}

// Metrics is the whole metric set on a private registry
type Metrics struct {
	registry *prometheus.Registry

	MessagesCreated prometheus.Counter
	UsersRegistered prometheus.Counter
	UsersLoggedIn   prometheus.Counter
	OnlineUsers     prometheus.Gauge

	cacheRequests    *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	cacheDuration    *prometheus.HistogramVec
	cacheInvalidated *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	errors       *prometheus.CounterVec

	breakerState *prometheus.GaugeVec

	redis *RequestMetrics
	db    *RequestMetrics
}

func NewMetrics(cfg MetricsConfig, info AppInfo) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	b := NewBuilder(reg, cfg.Namespace)

	m := &Metrics{
		registry:        reg,
		MessagesCreated: b.Counter("messages_created_total", "Messages sent").WithLabelValues(),
		UsersRegistered: b.Counter("users_registered_total", "Accounts registered").WithLabelValues(),
		UsersLoggedIn:   b.Counter("users_logged_in_total", "Successful logins").WithLabelValues(),
		OnlineUsers:     b.Gauge("online_users", "Users seen in the presence window").WithLabelValues(),

		cacheRequests:    b.Counter("cache_requests_total", "Cache operations", "operation", "cache_type"),
		cacheHits:        b.Counter("cache_hits_total", "Cache reads served from the store", "cache_type"),
		cacheMisses:      b.Counter("cache_misses_total", "Cache reads that fell through", "cache_type"),
		cacheDuration:    b.Histogram("cache_operations_duration_seconds", "Cache operation latency", fastBuckets, "operation"),
		cacheInvalidated: b.Counter("cache_invalidated_keys_total", "Keys purged by invalidation", "event"),

		httpRequests: b.Counter("http_requests_total", "HTTP requests", "method", "route", "status"),
		httpDuration: b.Histogram("http_request_duration_seconds", "HTTP request latency", httpBuckets, "method", "route"),
		errors:       b.Counter("errors_total", "Failed requests by error type", "error_type", "endpoint", "status_code"),

		breakerState: b.Gauge("breaker_state", "Circuit state: 0 closed, 1 open, 2 half-open", "resource"),

		redis: b.NewRequestMetrics("redis_commands", fastBuckets, "command"),
		db:    b.NewRequestMetrics("db_queries", nil, "operation", "table"),
	}
	b.Gauge("app_info", "Build information", "name", "version", "env").
		WithLabelValues(info.Name, info.Version, info.Env).Set(1)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the text exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveError(errorType, endpoint string, status int) {
	m.errors.WithLabelValues(errorType, endpoint, strconv.Itoa(status)).Inc()
}

// ObserveRedisCommand implements redis.CommandObserver
// ObserveBreakerState records a circuit transition
func (m *Metrics) ObserveBreakerState(resource string, state int) {
	m.breakerState.WithLabelValues(resource).Set(float64(state))
}

func (m *Metrics) ObserveRedisCommand(cmd string, elapsed time.Duration, err error) {
	m.redis.Record(elapsed, err, cmd)
}

// ObserveQuery implements database.QueryObserver
func (m *Metrics) ObserveQuery(operation, table string, elapsed time.Duration, err error) {
	m.db.Record(elapsed, err, operation, table)
}

// CacheRecorder labels cache observations with the store in use
func (m *Metrics) CacheRecorder(cacheType string) cache.Recorder {
	return cacheRecorder{m: m, cacheType: cacheType}
}

type cacheRecorder struct {
	m         *Metrics
	cacheType string
}

func (r cacheRecorder) ObserveCacheRequest(operation, outcome string, elapsed time.Duration) {
	r.m.cacheRequests.WithLabelValues(operation, r.cacheType).Inc()
	r.m.cacheDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	switch outcome {
	case cache.OutcomeHit:
		r.m.cacheHits.WithLabelValues(r.cacheType).Inc()
	case cache.OutcomeMiss:
		r.m.cacheMisses.WithLabelValues(r.cacheType).Inc()
	}
}

func (r cacheRecorder) ObserveInvalidation(kind string, deleted int64) {
	r.m.cacheInvalidated.WithLabelValues(kind).Add(float64(deleted))
}
