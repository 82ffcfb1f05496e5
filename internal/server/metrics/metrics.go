// Package metrics holds the server's Prometheus collectors and the HTTP
// endpoint that exposes them.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	rpcInFlight  prometheus.Gauge
	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	catalogSize  prometheus.Gauge
	adminSignIns *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		rpcInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "failvault",
			Subsystem: "grpc",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight RPCs.",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "failvault",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Total number of RPCs handled.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "failvault",
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of RPCs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "failvault",
			Subsystem: "catalog",
			Name:      "records",
			Help:      "Number of records returned by the latest listing.",
		}),
		adminSignIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "failvault",
			Subsystem: "admin",
			Name:      "token_requests_total",
			Help:      "Admin token requests by outcome.",
		}, []string{"outcome"}),
	}

	m.Registry.MustRegister(
		m.rpcInFlight,
		m.rpcRequests,
		m.rpcDuration,
		m.catalogSize,
		m.adminSignIns,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	m.rpcRequests.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) InFlight(delta float64) { m.rpcInFlight.Add(delta) }

func (m *Metrics) SetCatalogSize(n int) { m.catalogSize.Set(float64(n)) }

// AdminTokenRequest counts sign-in attempts; outcome is "issued" or "rejected".
func (m *Metrics) AdminTokenRequest(outcome string) {
	m.adminSignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
