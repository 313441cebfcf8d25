package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/pkg/config"
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

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	password, _ := reader.ReadString('\n')
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		appLogger.Error("Email and password are required")
		os.Exit(1)
	}

	usr, err := user.Create(db, user.CreateInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		appLogger.Error("Failed to create user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.Model(&user.User{}).Where("id = ?", usr.ID).Updates(map[string]interface{}{
		"is_staff":     true,
		"is_superuser": true,
	}).Error; err != nil {
		appLogger.Error("Failed to grant superuser flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("Superuser created", slog.String("email", usr.Email))
}
