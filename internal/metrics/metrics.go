// Package metrics exposes Prometheus counters for HTTP traffic and auth
// flow outcomes.  Collectors are registered on the default registry and
// served from GET /metrics.
package metrics

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests processed, by route and status code.",
	}, []string{"method", "route", "status"})

	authEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Auth flow events, by event name and outcome.",
	}, []string{"event", "outcome"})
)

// AuthEvent records one auth flow outcome, e.g. ("login", "ok") or
// ("refresh", "unauthorized").
func AuthEvent(event, outcome string) {
	authEventsTotal.WithLabelValues(event, outcome).Inc()
}

// Middleware counts every request once the handler chain finished.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if err != nil {
				// The error handler has not run yet; count what it will write.
				var appErr *apperr.Error
				var httpErr *echo.HTTPError
				switch {
				case errors.As(err, &appErr):
					status = appErr.Status
				case errors.As(err, &httpErr):
					status = httpErr.Code
				}
			}
			httpRequestsTotal.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
