package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はサイトサーバーで使う Prometheus コレクターをまとめる
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
	ResponseBytes      *prometheus.CounterVec
	RateLimitDropped   prometheus.Counter

	registry *prometheus.Registry
}

// New はコレクターを作成して registry に登録する
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_requests_total",
			Help: "Total number of site HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_request_duration_seconds",
			Help:    "Site request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		ResponseBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "site_response_bytes_total",
			Help: "Total number of response body bytes written.",
		}, []string{"route"}),
		RateLimitDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "site_ratelimit_dropped_total",
			Help: "Total number of requests dropped by rate limiter.",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSec,
		m.ResponseBytes,
		m.RateLimitDropped,
	)

	return m
}

// Middleware はリクエスト毎に計測する gin ミドルウェア
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()

		c.Next()

		route := routeLabel(c.FullPath())
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.RequestsTotal.WithLabelValues(route, method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, method, status).Observe(time.Since(startedAt).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.ResponseBytes.WithLabelValues(route).Add(float64(size))
		}
	}
}

// Handler は /metrics 用のハンドラを返す
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// routeLabel はラベルの種類を登録済みルートに限定する
func routeLabel(fullPath string) string {
	if fullPath == "" {
		return "other"
	}
	return fullPath
}
