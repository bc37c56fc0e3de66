package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeSessions prometheus.Gauge
	turnsTotal     *prometheus.CounterVec
	historyTrimmed prometheus.Counter

	streamTotal     *prometheus.CounterVec
	streamDuration  *prometheus.HistogramVec
	streamFragments *prometheus.CounterVec
	streamErrors    *prometheus.CounterVec

	gatewayClients prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeSessions: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "chat_active_sessions",
					Help: "Current live chat session count.",
				},
			),
			turnsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_turns_total",
					Help: "Total turns committed to sessions by role.",
				},
				[]string{"role"},
			),
			historyTrimmed: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "chat_history_trimmed_total",
					Help: "Total turns discarded by history trimming.",
				},
			),
			streamTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_stream_total",
					Help: "Total completion streams by provider and status.",
				},
				[]string{"provider", "status"},
			),
			streamDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "chat_stream_duration_seconds",
					Help:    "Completion stream duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			streamFragments: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_stream_fragments_total",
					Help: "Total text fragments received by provider.",
				},
				[]string{"provider"},
			),
			streamErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_stream_errors_total",
					Help: "Total completion stream failures by provider and error kind.",
				},
				[]string{"provider", "kind"},
			),
			gatewayClients: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "chat_gateway_clients",
					Help: "Current connected websocket clients.",
				},
			),
		}

		prometheus.MustRegister(
			m.activeSessions,
			m.turnsTotal,
			m.historyTrimmed,
			m.streamTotal,
			m.streamDuration,
			m.streamFragments,
			m.streamErrors,
			m.gatewayClients,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered initializes and registers metrics the first time it is called.
func EnsureRegistered() {
	_ = getMetrics()
}

func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func SetActiveSessions(count int) {
	m := getMetrics()
	m.activeSessions.Set(float64(count))
}

func RecordTurn(role string) {
	m := getMetrics()
	m.turnsTotal.WithLabelValues(role).Inc()
}

func RecordHistoryTrim(removed int) {
	if removed <= 0 {
		return
	}
	m := getMetrics()
	m.historyTrimmed.Add(float64(removed))
}

func RecordFragment(provider string) {
	m := getMetrics()
	m.streamFragments.WithLabelValues(provider).Inc()
}

// RecordStream records a finished stream. An empty errorKind means success.
func RecordStream(provider string, duration time.Duration, errorKind string) {
	m := getMetrics()
	status := "success"
	if errorKind != "" {
		status = "error"
		m.streamErrors.WithLabelValues(provider, errorKind).Inc()
	}
	m.streamTotal.WithLabelValues(provider, status).Inc()
	m.streamDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func SetGatewayClients(count int) {
	m := getMetrics()
	m.gatewayClients.Set(float64(count))
}
