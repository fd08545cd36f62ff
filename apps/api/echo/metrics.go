package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// served on the debug server under /metrics
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "darasa",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Number of HTTP requests handled, by route, method and status code.",
	}, []string{"route", "method", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "darasa",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies, by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// metricsMiddleware counts and times requests. Errors are handled here so that the
// recorded status code is the one sent to the client.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			if err := next(ctx); err != nil {
				ctx.Error(err)
			}

			route := ctx.Path() // route pattern, keeps label cardinality bounded
			if route == "" {
				route = "unmatched"
			}
			method := ctx.Request().Method
			requestsTotal.WithLabelValues(route, method, strconv.Itoa(ctx.Response().Status)).Inc()
			requestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
