package database

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/payment"
	"github.com/edusite/edusite-api/internal/features/subscription"
	"github.com/edusite/edusite-api/internal/features/user"
)

// Models lists every entity in migration order: owners before owned rows.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&course.Course{},
		&lesson.Lesson{},
		&subscription.Subscription{},
		&payment.Payment{},
	}
}

// Migrate applies schema migrations for all registered models.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	log.Info("database migrations applied", slog.Int("models", len(Models())))
	return nil
}
