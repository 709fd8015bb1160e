package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/ecommerce-backend/internal/apperr"
)

func count(method, route, status string) float64 {
	return testutil.ToFloat64(httpRequestsTotal.WithLabelValues(method, route, status))
}

func run(path string, h echo.HandlerFunc) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
	c.SetPath(path)
	_ = Middleware()(h)(c)
}

func TestMiddlewareCountsSuccess(t *testing.T) {
	before := count("GET", "/ok", "200")
	run("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.Equal(t, before+1, count("GET", "/ok", "200"))
}

func TestMiddlewareCountsDomainErrorStatus(t *testing.T) {
	// Domain failures surface as *apperr.Error before the error handler
	// runs; the counter must use the status it will write, not the
	// provisional 200.
	before := count("GET", "/missing", "404")
	run("/missing", func(c echo.Context) error {
		return apperr.NotFound(apperr.CodeProductNotFound, "Product not found.")
	})
	assert.Equal(t, before+1, count("GET", "/missing", "404"))
}

func TestMiddlewareCountsEchoErrorStatus(t *testing.T) {
	before := count("GET", "/teapot", "418")
	run("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})
	assert.Equal(t, before+1, count("GET", "/teapot", "418"))
}
