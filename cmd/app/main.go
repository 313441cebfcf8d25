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

	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/bootstrap"
	"github.com/edusite/edusite-api/internal/http/routes"
	"github.com/edusite/edusite-api/internal/jobs"
	"github.com/edusite/edusite-api/pkg/cache"
	"github.com/edusite/edusite-api/pkg/config"
	"github.com/edusite/edusite-api/pkg/database"
	"github.com/edusite/edusite-api/pkg/email"
	"github.com/edusite/edusite-api/pkg/logger"
	"github.com/edusite/edusite-api/pkg/metrics"
	"github.com/edusite/edusite-api/pkg/middleware"
	"github.com/edusite/edusite-api/pkg/request"
	"github.com/edusite/edusite-api/pkg/stripe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(db, appLogger); err != nil {
			appLogger.Error("migrations failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := bootstrap.EnsureDefaultSuperuser(db, appLogger); err != nil {
		appLogger.Error("ensure superuser failed", slog.String("error", err.Error()))
	}

	cacheClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cacheClient.Close()

	emailClient := email.NewClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
	)

	stripeClient := stripe.NewClient(
		cfg.Stripe.SecretKey,
		cfg.Stripe.SuccessURL,
		cfg.Stripe.CancelURL,
	)

	notifier := jobs.NewCourseNotificationJob(db, appLogger, emailClient)

	scheduler, err := jobs.NewScheduler(cfg.Jobs, appLogger, jobs.NewInactivitySweepJob(db, appLogger))
	if err != nil {
		appLogger.Error("scheduler setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()

	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024)) // 10MB limit
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, cfg, db, appLogger, stripeClient, cacheClient, notifier)

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
		return
	}

	appLogger.Info("server stopped")
}
