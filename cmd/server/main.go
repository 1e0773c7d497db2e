package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/sakila-rental/internal/config"
	"github.com/iliyamo/sakila-rental/internal/database"
	"github.com/iliyamo/sakila-rental/internal/handler"
	"github.com/iliyamo/sakila-rental/internal/logging"
	"github.com/iliyamo/sakila-rental/internal/queue"
	"github.com/iliyamo/sakila-rental/internal/repository"
	"github.com/iliyamo/sakila-rental/internal/router"
	"github.com/iliyamo/sakila-rental/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logging.Fatal().Err(err).Str("host", cfg.DBHost).Msg("open database")
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it the rate limiter is a no-op.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil && cfg.RateLimit.Enabled {
		logging.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unavailable, rate limiting disabled")
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events handler.EventPublisher
	if cfg.EventsEnabled {
		events = service.NewRentalPublisher(cfg.RabbitURL)
	}
	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.StartRentalConsumer(ctx, cfg.RabbitURL, cfg.EventLogDir); err != nil {
				logging.Error().Err(err).Msg("rental consumer stopped")
			}
		}()
	}

	rentals := repository.NewRentalRepo(db, int64(cfg.DefaultStaffID))
	customers := repository.NewCustomerRepo(db, int64(cfg.DefaultStoreID), int64(cfg.DefaultAddressID))

	e := router.New(cfg, rdb)
	router.RegisterRoutes(e, db)
	router.RegisterFilms(e, handler.NewFilmHandler(
		repository.NewFilmRepo(db),
		repository.NewInventoryRepo(db),
		repository.NewReportRepo(db),
	))
	router.RegisterRentals(e, handler.NewRentalHandler(rentals, events))
	router.RegisterCustomers(e, handler.NewCustomerHandler(customers, rentals))

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
