package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shouni/go-ugc-kit/pkg/generator"
)

const namespace = "ugc"

// Metrics はプロセス専用のレジストリと各メトリクスを保持します。
// グローバルの DefaultRegistry は使いません。
type Metrics struct {
	Registry *prometheus.Registry

	generationCalls    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

// New はレジストリを作成し、メトリクスを登録します。
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry: registry,
		generationCalls: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_calls_total",
				Help:      "Total number of concept generation calls, partitioned by kind and result.",
			},
			[]string{"kind", "result"},
		),
		generationDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Latency of concept generation calls.",
				Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
			},
			[]string{"kind"},
		),
		httpRequests: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests, partitioned by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveCall は generator.CallObserver を満たします。
func (m *Metrics) ObserveCall(kind string, elapsed time.Duration, err error) {
	m.generationCalls.WithLabelValues(kind, resultLabel(err)).Inc()
	m.generationDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveHTTP は HTTP リクエストを1件記録します。
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// RegisterSessionGauge は保持中のセッション数を返す関数をゲージとして登録します。
func (m *Metrics) RegisterSessionGauge(count func() int) {
	promauto.With(m.Registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "studio_sessions",
			Help:      "Number of studio sessions currently held in memory.",
		},
		func() float64 { return float64(count()) },
	)
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, generator.ErrNoResponse):
		return "no_response"
	case errors.Is(err, generator.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}

var _ generator.CallObserver = (*Metrics)(nil)
