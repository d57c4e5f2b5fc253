package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/tfe-workspaces/internal/info"
	"github.com/slok/tfe-workspaces/internal/metrics"
)

type recorder struct {
	operationDuration *prometheus.HistogramVec
	fallbacks         *prometheus.CounterVec
	refreshDuration   *prometheus.HistogramVec
}

// NewRecorder returns a metrics recorder backed by Prometheus, the metrics are registered on the registerer.
func NewRecorder(reg prometheus.Registerer) metrics.Recorder {
	r := recorder{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: info.PrometheusNamespace,
			Subsystem: "provider",
			Name:      "operation_duration_seconds",
			Help:      "The duration of the provider operations.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "operation", "success"}),

		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: info.PrometheusNamespace,
			Subsystem: "provider",
			Name:      "fallbacks_total",
			Help:      "The number of operations retried on the HTTP API after a CLI failure.",
		}, []string{"operation"}),

		refreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: info.PrometheusNamespace,
			Subsystem: "controller",
			Name:      "refresh_duration_seconds",
			Help:      "The duration of the workspaces refresh.",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"success"}),
	}

	reg.MustRegister(
		r.operationDuration,
		r.fallbacks,
		r.refreshDuration,
	)

	return r
}

func (r recorder) ObserveProviderOperation(_ context.Context, provider, operation string, success bool, t time.Duration) {
	r.operationDuration.WithLabelValues(provider, operation, strconv.FormatBool(success)).Observe(t.Seconds())
}

func (r recorder) IncProviderFallback(_ context.Context, operation string) {
	r.fallbacks.WithLabelValues(operation).Inc()
}

func (r recorder) ObserveRefresh(_ context.Context, success bool, t time.Duration) {
	r.refreshDuration.WithLabelValues(strconv.FormatBool(success)).Observe(t.Seconds())
}
