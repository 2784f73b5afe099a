package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduler.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	timetablesGenerated prometheus.Counter
	constraintImpacts   prometheus.Counter
	conflictsDetected   prometheus.Counter
	commitsTotal        prometheus.Counter
	editSessionsOpened  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	timetablesGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetables_generated_total",
		Help: "Total timetable generation runs",
	})

	constraintImpacts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "constraint_impacted_slots_total",
		Help: "Total slots placed under constraint impact",
	})

	conflictsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflicts_detected_total",
		Help: "Total conflicts reported by the detector",
	})

	commitsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_commits_total",
		Help: "Total manual override commits",
	})

	editSessionsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "edit_sessions_opened_total",
		Help: "Total manual edit sessions opened",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		timetablesGenerated, constraintImpacts, conflictsDetected, commitsTotal,
		editSessionsOpened, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:            registry,
		handler:             handler,
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		timetablesGenerated: timetablesGenerated,
		constraintImpacts:   constraintImpacts,
		conflictsDetected:   conflictsDetected,
		commitsTotal:        commitsTotal,
		editSessionsOpened:  editSessionsOpened,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// IncCacheHit counts one snapshot cache hit.
func (m *MetricsService) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// IncCacheMiss counts one snapshot cache miss.
func (m *MetricsService) IncCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// ObserveGeneration counts one generation run and its degraded slots and
// conflicts.
func (m *MetricsService) ObserveGeneration(constraintImpacted, conflicts int) {
	if m == nil {
		return
	}
	m.timetablesGenerated.Inc()
	m.constraintImpacts.Add(float64(constraintImpacted))
	m.conflictsDetected.Add(float64(conflicts))
}

// IncCommit counts one manual override commit.
func (m *MetricsService) IncCommit() {
	if m == nil {
		return
	}
	m.commitsTotal.Inc()
}

// IncEditSession counts one opened edit session.
func (m *MetricsService) IncEditSession() {
	if m == nil {
		return
	}
	m.editSessionsOpened.Inc()
}
