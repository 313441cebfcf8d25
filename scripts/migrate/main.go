package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/edusite/edusite-api/pkg/config"
	"github.com/edusite/edusite-api/pkg/database"
	"github.com/edusite/edusite-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	db, err := database.Connect(context.Background(), cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close(db, appLogger)

	if err := database.Migrate(db, appLogger); err != nil {
		appLogger.Error("Migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Migrations applied successfully")
}
