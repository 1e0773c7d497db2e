// Package middleware holds the echo middleware shared by every route: request
// ids with access logging, Prometheus instrumentation and rate limiting.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sakila-rental/internal/logging"
)

// RequestLogger assigns each request an id, reusing a client supplied
// X-Request-ID, stores it in the request context for logging.Ctx, echoes it
// in the response and writes one access log line when the handler returns.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = logging.NewRequestID()
			}
			c.SetRequest(req.WithContext(logging.ContextWithRequestID(req.Context(), id)))
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			status := c.Response().Status
			ev := logging.Ctx(c.Request().Context()).Info()
			if status >= 500 {
				ev = logging.Ctx(c.Request().Context()).Error().Err(err)
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("route", c.Path()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
