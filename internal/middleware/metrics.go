package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/metrics"
)

// Metrics records request count, latency and in-flight requests.  The
// endpoint label is the registered route pattern to keep cardinality
// bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			metrics.APIActiveRequests.Inc()
			defer metrics.APIActiveRequests.Dec()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.RecordAPIRequest(c.Request().Method, endpoint, strconv.Itoa(c.Response().Status), time.Since(start))
			return nil
		}
	}
}
