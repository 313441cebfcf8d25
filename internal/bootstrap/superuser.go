package bootstrap

import (
	"errors"
	"os"

	"log/slog"

	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/user"
)

// EnsureDefaultSuperuser creates an administrative account from the
// SUPERUSER_EMAIL and SUPERUSER_PASSWORD environment variables when one
// does not exist yet. A no-op when the variables are unset.
func EnsureDefaultSuperuser(db *gorm.DB, log *slog.Logger) error {
	email := os.Getenv("SUPERUSER_EMAIL")
	password := os.Getenv("SUPERUSER_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	if _, err := user.GetByEmail(db, email); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	usr, err := user.Create(db, user.CreateInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	if err := db.Model(&user.User{}).Where("id = ?", usr.ID).Updates(map[string]interface{}{
		"is_staff":     true,
		"is_superuser": true,
	}).Error; err != nil {
		return err
	}

	log.Info("default superuser created", slog.String("email", usr.Email))
	return nil
}
