package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pictocat/pictocat/internal/notification"
)

// Metrics owns the service's Prometheus collectors.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	saves         *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictocat",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pictocat",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictocat",
			Name:      "user_data_saves_total",
			Help:      "User data saves by outcome.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pictocat",
			Name:      "notifications_total",
			Help:      "Notifications sent by kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.saves, m.notifications,
	)
	return m
}

// Middleware records request counts and latency by matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ObserveSave counts a user data save.
func (m *Metrics) ObserveSave(applied bool) {
	result := "applied"
	if !applied {
		result = "stale"
	}
	m.saves.WithLabelValues(result).Inc()
}

// Notifier counts messages by kind before handing them to next.
func (m *Metrics) Notifier(next notification.Notifier) notification.Notifier {
	return countingNotifier{next: next, counter: m.notifications}
}

type countingNotifier struct {
	next    notification.Notifier
	counter *prometheus.CounterVec
}

func (n countingNotifier) Send(ctx context.Context, message notification.Message) error {
	n.counter.WithLabelValues(message.Kind).Inc()
	return n.next.Send(ctx, message)
}
