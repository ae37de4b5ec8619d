package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mailroom"

// Metrics 监控指标
//
// 使用独立的 Registry，同一进程内可以创建多个实例。
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// 业务指标
	MailLoggedTotal       *prometheus.CounterVec
	CapacityRejectedTotal *prometheus.CounterVec
	EventsPublishedTotal  *prometheus.CounterVec

	// 错误指标
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	register := func(c prometheus.Collector) {
		registry.MustRegister(c)
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "action", "status_code"},
		),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "action"},
		),

		HTTPRequestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		MailLoggedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mail_logged_total",
				Help:      "Total number of mail items logged at the counter",
			},
			[]string{"type"},
		),

		CapacityRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capacity_rejected_total",
				Help:      "Total number of adds or reactivations rejected by a capacity limit",
			},
			[]string{"resource"},
		),

		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Total number of lifecycle events handed to the broker",
			},
			[]string{"type", "result"},
		),

		PanicsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "panics_total",
				Help:      "Total number of recovered panics",
			},
		),

		RateLimitBlocks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_blocks_total",
				Help:      "Total number of requests rejected by the rate limiter",
			},
		),
	}

	register(m.HTTPRequestsTotal)
	register(m.HTTPRequestDuration)
	register(m.HTTPRequestSize)
	register(m.HTTPResponseSize)
	register(m.MailLoggedTotal)
	register(m.CapacityRejectedTotal)
	register(m.EventsPublishedTotal)
	register(m.PanicsTotal)
	register(m.RateLimitBlocks)
	register(collectors.NewGoCollector())
	register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, endpoint, action string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, action, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint, action).Observe(duration.Seconds())
	m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// MailLogged 记录登记的邮件
func (m *Metrics) MailLogged(mailType string) {
	m.MailLoggedTotal.WithLabelValues(mailType).Inc()
}

// CapacityRejected 记录容量拒绝
func (m *Metrics) CapacityRejected(resource string) {
	m.CapacityRejectedTotal.WithLabelValues(resource).Inc()
}

// EventPublished 记录事件发布结果
func (m *Metrics) EventPublished(eventType string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimitBlock 记录限流阻止
func (m *Metrics) RecordRateLimitBlock() {
	m.RateLimitBlocks.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
