// Package metricsvc exposes the HTTP and domain metrics of EduFlow to Prometheus.
package metricsvc

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

const namespace = "eduflow"

// Collector is a prometheus.Collector for the API and its domain events.
type Collector struct {
	requests             *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	notifications        *prometheus.CounterVec
	achievementsUnlocked *prometheus.CounterVec
}

func NewCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "The number of HTTP requests handled.",
			}, []string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to handle HTTP requests.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}, []string{"method", "route"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "The number of notifications handed to a transport.",
			}, []string{"kind", "transport", "result"},
		),
		achievementsUnlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "achievements_unlocked_total",
				Help:      "The number of achievements unlocked by students.",
			}, []string{"code"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.requestDuration.Describe(ch)
	c.notifications.Describe(ch)
	c.achievementsUnlocked.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.requestDuration.Collect(ch)
	c.notifications.Collect(ch)
	c.achievementsUnlocked.Collect(ch)
}

// NewRegistry returns a registry with the go & process collectors and c.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	r := prometheus.NewRegistry()
	collectors := []prometheus.Collector{
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		c,
	}
	for _, col := range collectors {
		if err := r.Register(col); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Middleware records the count and duration of requests per route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := ctx.Path()
			if route == "" {
				route = "unknown"
			}
			method := ctx.Request().Method
			c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

type instrumentedNotifier struct {
	next      notification.Notifier
	transport string
	c         *Collector
}

// InstrumentNotifier counts the notifications handed to next.
func (c *Collector) InstrumentNotifier(next notification.Notifier, transport string) notification.Notifier {
	return &instrumentedNotifier{next: next, transport: transport, c: c}
}

func (n *instrumentedNotifier) Notify(ctx context.Context, notif notification.Notification) error {
	err := n.next.Notify(ctx, notif)
	result := "ok"
	if err != nil {
		result = "error"
	}
	n.c.notifications.WithLabelValues(string(notif.Kind), n.transport, result).Inc()
	return err
}

type Evaluator interface {
	Evaluate(ctx context.Context, student user.User) ([]achievement.Badge, error)
}

type instrumentedEvaluator struct {
	next Evaluator
	c    *Collector
}

// InstrumentEvaluator counts the achievements unlocked through next.
func (c *Collector) InstrumentEvaluator(next Evaluator) Evaluator {
	return &instrumentedEvaluator{next: next, c: c}
}

func (e *instrumentedEvaluator) Evaluate(ctx context.Context, student user.User) ([]achievement.Badge, error) {
	badges, err := e.next.Evaluate(ctx, student)
	for _, b := range badges {
		e.c.achievementsUnlocked.WithLabelValues(b.Code).Inc()
	}
	return badges, err
}
