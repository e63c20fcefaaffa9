package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/clikenova/storefront/internal/api/metrics"
)

func TestMetrics_RecordsRenderedStatus(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected one recorded request, got %v", got)
	}
}
