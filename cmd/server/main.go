package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"                      // .env loader for local development
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo built-in middleware
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/appointment-booking/internal/config"
	"github.com/iliyamo/appointment-booking/internal/database"
	"github.com/iliyamo/appointment-booking/internal/handler"
	"github.com/iliyamo/appointment-booking/internal/logger"
	"github.com/iliyamo/appointment-booking/internal/mail"
	"github.com/iliyamo/appointment-booking/internal/middleware"
	"github.com/iliyamo/appointment-booking/internal/queue"
	"github.com/iliyamo/appointment-booking/internal/repository"
	"github.com/iliyamo/appointment-booking/internal/router"
	"github.com/iliyamo/appointment-booking/internal/service"
	"github.com/iliyamo/appointment-booking/internal/session"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine outside development

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DBMigrate {
		if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, log); err != nil {
			return err
		}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable; using in-process sessions and status, rate limit and cache disabled")
	} else {
		defer rdb.Close()
	}
	sessions, status := stores(rdb)

	q, closeQueue := newQueue(cfg, log)
	defer closeQueue()

	// Credentials
	hash, err := session.AdminPasswordHash(cfg.AdminPasswordHash, cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	verifier := session.NewStaticVerifier(cfg.AdminUsername, hash)

	// Domain services
	appts := repository.NewAppointmentRepo(db)
	closing := service.NewClosingService(repository.NewClosedDayRepo(db))
	dispatcher := service.NewDispatcher(q, status, cfg.AdminEmail, cfg.PublicBaseURL, log)
	booking := service.NewBookingService(appts, closing, dispatcher, service.BookingOptions{
		EnforceClosedDays:      cfg.EnforceClosedDays,
		EnforceSlotExclusivity: cfg.EnforceSlotExclusivity,
	}, log)
	if err := os.MkdirAll(cfg.ImageDir, 0o755); err != nil {
		return err
	}
	photos := repository.NewPhotoRepo(cfg.ImageDir)

	worker := service.NewNotificationWorker(newSender(cfg, log), status, service.WorkerOptions{
		MaxAttempts:    cfg.NotifyMaxAttempts,
		Backoff:        cfg.NotifyBackoff,
		AttemptTimeout: cfg.SMTPTimeout,
	}, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := worker.Run(ctx, q); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification worker stopped", zap.Error(err))
		}
	}()

	sweeper := service.NewSweeper(appts, cfg.SweepSchedule, log)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Metrics())

	gate := middleware.NewAdminSession(sessions, cfg.SessionSecret, cfg.SessionSecure, log)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, rdb, log)

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, handler.NewBookingHandler(booking, dispatcher, photos, log), limit, cache)
	router.RegisterAdmin(e,
		&handler.AdminHandler{Booking: booking, Closing: closing, Dispatcher: dispatcher, Photos: photos, Cache: middleware.NewRouteCache(cacheCfg, rdb), PublicDir: cfg.PublicDir, Log: log},
		&handler.AuthHandler{Verifier: verifier, Sessions: sessions, Gate: gate, TTL: cfg.SessionTTL, PublicDir: cfg.PublicDir, Log: log},
		gate, limit)
	router.RegisterStatic(e, cfg.PublicDir, cfg.ImageDir)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	stop()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("notification worker did not stop in time")
	}
	return nil
}

// stores picks Redis-backed sessions and delivery status when Redis is up.
func stores(rdb *redis.Client) (session.Store, service.StatusStore) {
	if rdb == nil {
		return session.NewMemoryStore(), repository.NewMemoryStatusRepo()
	}
	return session.NewRedisStore(rdb, "session"), repository.NewRedisStatusRepo(rdb, "notify")
}

func newQueue(cfg config.Config, log *zap.Logger) (queue.Queue, func()) {
	if cfg.QueueDriver == "memory" {
		return queue.NewMemoryQueue(100), func() {}
	}
	rq := queue.NewRabbitQueue(cfg.RabbitURL, cfg.QueueName, cfg.RabbitDialTimeout, log)
	return rq, func() {
		if err := rq.Close(); err != nil {
			log.Warn("queue close", zap.Error(err))
		}
	}
}

func newSender(cfg config.Config, log *zap.Logger) mail.Sender {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set; emails are logged instead of sent")
		return mail.NewLogSender(log)
	}
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return mail.NewSMTPSender(cfg.SMTPHost, port, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.SMTPTimeout)
}
