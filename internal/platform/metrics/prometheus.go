package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry           *prometheus.Registry
	RequestLatency     *prometheus.HistogramVec // by RPC method
	RequestErrorsTotal *prometheus.CounterVec   // by RPC method and gRPC code
	ResultSize         *prometheus.HistogramVec // listings returned, by operation
	ViewsRecordedTotal prometheus.Counter
}

// NewMetricsManager builds the collectors on a private registry so tests can
// create as many managers as they like.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	requestErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by method and status code.",
	}, []string{"method", "code"})

	resultSize := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "discovery_result_size",
		Help:      "Number of listings returned per discovery call.",
		Buckets:   []float64{0, 1, 5, 10, 20, 50},
	}, []string{"operation"})

	viewsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_views_recorded_total",
		Help:      "Total number of listing views recorded.",
	})

	registry.MustRegister(
		requestLatency,
		requestErrors,
		resultSize,
		viewsRecorded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:           registry,
		RequestLatency:     requestLatency,
		RequestErrorsTotal: requestErrors,
		ResultSize:         resultSize,
		ViewsRecordedTotal: viewsRecorded,
	}
}

// ObserveResultSize is nil-safe so handlers can run without metrics.
func (m *MetricsManager) ObserveResultSize(operation string, n int) {
	if m == nil {
		return
	}
	m.ResultSize.WithLabelValues(operation).Observe(float64(n))
}

func (m *MetricsManager) IncViewsRecorded() {
	if m == nil {
		return
	}
	m.ViewsRecordedTotal.Inc()
}

// Router serves /metrics from the manager's registry and a liveness check at
// /healthz.
func (m *MetricsManager) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Server exposes the metrics router over HTTP.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

func NewServer(addr string, m *MetricsManager, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           m.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info("Prometheus metrics server starting", "addr", s.srv.Addr, "path", "/metrics")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
