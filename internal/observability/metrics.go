package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	latencySeconds        *prometheus.HistogramVec
	errorsTotal           *prometheus.CounterVec
	notificationsTotal    *prometheus.CounterVec
	notificationFailures  *prometheus.CounterVec
	confirmationsTotal    prometheus.Counter
	watcherTicksTotal     *prometheus.CounterVec
	watcherRemindersTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estagio_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estagio_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estagio_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estagio_notifications_sent_total",
			Help: "Outbound notification emails recorded, by type.",
		}, []string{"tipo"})

		notificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estagio_notification_failures_total",
			Help: "Outbound notification emails that failed delivery, by type.",
		}, []string{"tipo"})

		confirmationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estagio_confirmations_total",
			Help: "Confirmation tokens successfully consumed.",
		})

		watcherTicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estagio_watcher_ticks_total",
			Help: "Expiration watcher ticks, by outcome.",
		}, []string{"outcome"})

		watcherRemindersTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estagio_watcher_reminders_total",
			Help: "Reminder emails dispatched by the expiration watcher.",
		})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			notificationsTotal,
			notificationFailures,
			confirmationsTotal,
			watcherTicksTotal,
			watcherRemindersTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// NotificationsSent exposes the counter for dispatched notifications.
func NotificationsSent() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// NotificationFailures exposes the counter for failed notification sends.
func NotificationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationFailures
}

// Confirmations exposes the counter for consumed confirmation tokens.
func Confirmations() prometheus.Counter {
	RegisterMetrics()
	return confirmationsTotal
}

// WatcherTicks exposes the counter for watcher tick outcomes.
func WatcherTicks() *prometheus.CounterVec {
	RegisterMetrics()
	return watcherTicksTotal
}

// WatcherReminders exposes the counter for watcher-dispatched reminders.
func WatcherReminders() prometheus.Counter {
	RegisterMetrics()
	return watcherRemindersTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
