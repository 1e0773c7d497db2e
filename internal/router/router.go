// Package router builds the echo instance and registers every route of the
// rental API.
package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/sakila-rental/internal/config"
	"github.com/iliyamo/sakila-rental/internal/handler"
	"github.com/iliyamo/sakila-rental/internal/logging"
	"github.com/iliyamo/sakila-rental/internal/middleware"
)

// New returns an echo instance with the shared middleware chain installed.
// rdb may be nil, which disables rate limiting.
func New(cfg config.Config, rdb *redis.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = goccyJSONSerializer{}
	e.HTTPErrorHandler = errorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb))
	return e
}

// RegisterRoutes registers the operational endpoints: liveness, readiness
// against db and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// errorHandler renders router-level and unhandled errors as {"error": ...}.
// Handlers answer their own expected failures; anything reaching here with a
// 5xx status is logged.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		logging.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
