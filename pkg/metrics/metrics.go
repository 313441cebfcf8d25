package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edusite_http_requests_total",
			Help: "Total number of HTTP requests handled, by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edusite_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	notificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edusite_course_notifications_sent_total",
			Help: "Number of course update notification emails dispatched.",
		},
	)

	usersDeactivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edusite_users_deactivated_total",
			Help: "Number of users deactivated by the inactivity sweep.",
		},
	)
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveNotificationsSent adds to the notification counter.
func ObserveNotificationsSent(count int) {
	if count > 0 {
		notificationsSent.Add(float64(count))
	}
}

// ObserveUsersDeactivated adds to the sweep counter.
func ObserveUsersDeactivated(count int) {
	if count > 0 {
		usersDeactivated.Add(float64(count))
	}
}
