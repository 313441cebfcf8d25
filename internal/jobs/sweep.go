package jobs

import (
	"context"
	"time"

	"log/slog"

	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/pkg/metrics"
)

// InactivityThreshold is how long an account may sit unused before the
// sweep deactivates it.
const InactivityThreshold = 30 * 24 * time.Hour

// InactivitySweepJob deactivates accounts whose last login is older than
// the threshold. Users who never logged in are left alone.
type InactivitySweepJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewInactivitySweepJob constructs the sweep job.
func NewInactivitySweepJob(db *gorm.DB, logger *slog.Logger) *InactivitySweepJob {
	return &InactivitySweepJob{db: db, logger: logger}
}

// Run performs one sweep and returns the number of deactivated accounts.
func (j *InactivitySweepJob) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-InactivityThreshold)

	result := j.db.WithContext(ctx).
		Model(&user.User{}).
		Where("is_active = ? AND last_login IS NOT NULL AND last_login < ?", true, cutoff).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}

	count := int(result.RowsAffected)
	metrics.ObserveUsersDeactivated(count)

	if count > 0 {
		j.logger.Info("inactive users deactivated",
			slog.Int("count", count),
			slog.Time("cutoff", cutoff))
	}

	return count, nil
}
