package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// Metrics holds all Prometheus metrics for the loan desk API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	authzDecisions    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	quotesTotal       *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loandesk_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		authzDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_authz_decisions_total",
				Help: "Total authorization decisions by outcome.",
			},
			[]string{"decision"},
		),
		statusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_status_transitions_total",
				Help: "Total application status transitions.",
			},
			[]string{"from", "to"},
		),
		quotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_quotes_total",
				Help: "Total loan quotes computed.",
			},
			[]string{"loan_type"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loandesk_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// MetricsMiddleware feeds the request counter and duration histogram from
// live traffic. Probe endpoints are skipped, like in the logger, so health
// checks do not drown out real operations.
func MetricsMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/readyz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if ww.Status() >= 400 {
					m.IncrRequest("error")
				} else {
					m.IncrRequest("success")
				}

				// The route pattern is only populated after routing, so the
				// label reads "GET /api/loans/{loanId}" instead of one series
				// per loan id.
				operation := r.Method + " " + r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						operation = r.Method + " " + pattern
					}
				}
				m.RecordRequestDuration(operation, time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrAuthzDecision increments the authorization decision counter.
func (m *Metrics) IncrAuthzDecision(allowed bool) {
	if allowed {
		m.authzDecisions.WithLabelValues("allow").Inc()
	} else {
		m.authzDecisions.WithLabelValues("deny").Inc()
	}
}

// IncrStatusTransition increments the status transition counter.
func (m *Metrics) IncrStatusTransition(from, to string) {
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

// IncrQuote increments the quote counter for a loan type.
func (m *Metrics) IncrQuote(loanType string) {
	m.quotesTotal.WithLabelValues(loanType).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// OpsSnapshot returns current operational counters suitable for the
// GET /api/analytics/ops endpoint. Prometheus counters are cumulative, so
// the snapshot covers the lifetime of the process.
func (m *Metrics) OpsSnapshot() *domain.OpsSnapshot {
	success := getCounterValue(m.requestsTotal, "success")
	errored := getCounterValue(m.requestsTotal, "error")
	total := success + errored

	hits := getCounterValue(m.cacheHits, "quotes")
	misses := getCounterValue(m.cacheMisses, "quotes")

	allowed := getCounterValue(m.authzDecisions, "allow")
	denied := getCounterValue(m.authzDecisions, "deny")

	errorRate := float64(0)
	if total > 0 {
		errorRate = errored / total
	}
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.OpsSnapshot{
		TotalRequests: int64(total),
		ErrorRate:     errorRate,
		CacheHitRate:  cacheHitRate,
		AuthzAllowed:  int64(allowed),
		AuthzDenied:   int64(denied),
		WebhookErrors: int64(getCounterValue(m.externalErrors, "webhook")),
		Period:        "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
