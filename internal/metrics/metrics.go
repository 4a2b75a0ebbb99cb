package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsOpened  *prometheus.CounterVec
	SessionsClosed  prometheus.Counter
	ImagesUploaded  prometheus.Counter
	PlayFlushes     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		SessionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_sessions_opened_total",
				Help: "Play sessions opened per quiz",
			},
			[]string{"quiz_id"},
		),
		SessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_closed_total",
			Help: "Play sessions closed explicitly; expired sessions are not counted",
		}),
		ImagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_images_uploaded_total",
			Help: "Images uploaded by operators",
		}),
		PlayFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_play_flushes_total",
			Help: "Per-quiz play count flushes into the record store",
		}),
	}
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.SessionsOpened,
		m.SessionsClosed,
		m.ImagesUploaded,
		m.PlayFlushes,
	)
	return m
}

// SessionOpened implements app.PlayObserver.
func (m *Metrics) SessionOpened(quizID string) {
	m.SessionsOpened.WithLabelValues(quizID).Inc()
}

// SessionClosed implements app.PlayObserver.
func (m *Metrics) SessionClosed(string) {
	m.SessionsClosed.Inc()
}

// Middleware records request counts and latency keyed by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
