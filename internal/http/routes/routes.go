package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/auth"
	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/payment"
	"github.com/edusite/edusite-api/internal/features/subscription"
	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/pkg/cache"
	"github.com/edusite/edusite-api/pkg/config"
	"github.com/edusite/edusite-api/pkg/health"
	"github.com/edusite/edusite-api/pkg/stripe"
)

// ContentNotifier fans course and lesson change events out to background
// subscriber mail delivery.
type ContentNotifier interface {
	course.UpdateNotifier
	lesson.UpdateNotifier
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, db *gorm.DB, logger *slog.Logger, stripeClient *stripe.Client, cacheClient cache.Client, notifier ContentNotifier) {
	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.VersionInfo)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	middleware.Initialize(db, cfg.JWTSecret, logger)

	authHandler := auth.NewHandler(db, logger, cfg)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(db, logger)
	user.RegisterRoutes(api, userHandler)

	courseHandler := course.NewHandler(db, logger, cacheClient, notifier)
	course.RegisterRoutes(api, courseHandler)

	lessonHandler := lesson.NewHandler(db, logger, notifier)
	lesson.RegisterRoutes(api, lessonHandler)

	subscriptionHandler := subscription.NewHandler(db, logger)
	subscription.RegisterRoutes(api, subscriptionHandler)

	paymentHandler := payment.NewHandler(db, logger, stripeClient)
	payment.RegisterRoutes(api, paymentHandler)
}
