package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/config"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/database"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/handler"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/logs"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/mailer"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/middleware"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/notify"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/repository"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/router"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logs.New(cfg.Env, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.Migrate(migCtx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient(config.LoadRedisConfig(), logger)
	if rdb != nil {
		defer rdb.Close()
	}

	dispatcher := notify.NewDispatcher(mailer.New(cfg.Mail), cfg.VenueName, cfg.VenueEmail, logger)
	notifier, closeNotifier := buildNotifier(cfg.Notify, dispatcher, logger)
	defer closeNotifier()

	if cfg.Notify.Mode == config.NotifyQueue && cfg.Notify.Consumer {
		consumer := queue.NewConsumer(queue.ConsumerConfig{
			URL:      cfg.Notify.AMQPURL,
			Exchange: cfg.Notify.Exchange,
			Queue:    cfg.Notify.Queue,
			Prefetch: cfg.Notify.Prefetch,
			Timeout:  cfg.Mail.SMTPTimeout * 2,
		}, dispatcher, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "err", err)
			}
		}()
	}

	svc := service.New(
		repository.NewBookingRepo(db),
		repository.NewBlockedSlotRepo(db),
		notifier,
		service.Options{ManageURL: cfg.ManageURL(), Logger: logger, NotifyTimeout: cfg.Notify.Timeout},
	)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	e.Use(echoMw.Recover())
	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMw.BodyLimit("64K"))

	cacheCfg := config.LoadCacheConfig()
	lim := router.Limits{
		BookingWrites: middleware.NewTokenBucket(config.LoadRateLimitConfig("booking", 10, 6*time.Second), rdb, logger),
		Login:         middleware.NewTokenBucket(config.LoadRateLimitConfig("login", 5, 12*time.Second), rdb, logger),
		Availability:  middleware.NewRedisCache(cacheCfg, rdb, logger),
		Invalidate:    middleware.NewCacheInvalidator(cacheCfg, rdb, logger),
	}
	router.RegisterRoutes(e, db)
	router.RegisterBookings(e, handler.NewBookingHandler(svc), lim)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), logger), cfg.JWTSecret, lim)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc), cfg.JWTSecret, lim)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "notify_mode", cfg.Notify.Mode)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
}

// buildNotifier picks the transport for booking mail. Queue mode falls back
// to sending directly when the broker cannot be reached at startup.
func buildNotifier(cfg config.NotifyConfig, d *notify.Dispatcher, log *slog.Logger) (service.Notifier, func()) {
	if cfg.Mode != config.NotifyQueue {
		return d, func() {}
	}
	pub, err := queue.NewPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, sending booking mail directly", "err", err)
		return d, func() {}
	}
	return pub, func() { _ = pub.Close() }
}
