package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/subscription"
	"github.com/edusite/edusite-api/pkg/metrics"
)

// NotificationWindow is the minimum quiet period between update emails
// for one course.
const NotificationWindow = 4 * time.Hour

// EmailSender delivers notification emails. Satisfied by email.Client.
type EmailSender interface {
	SendNotification(to []string, subject, body string) error
}

// CourseNotificationJob emails course subscribers when material changes.
// At most one batch goes out per course per window, enforced by an
// atomic claim on the course row.
type CourseNotificationJob struct {
	db     *gorm.DB
	logger *slog.Logger
	sender EmailSender
}

// NewCourseNotificationJob constructs the notification job.
func NewCourseNotificationJob(db *gorm.DB, logger *slog.Logger, sender EmailSender) *CourseNotificationJob {
	return &CourseNotificationJob{db: db, logger: logger, sender: sender}
}

// LessonUpdated handles a lesson change event in the background. It
// satisfies the lesson handler's notifier contract.
func (j *CourseNotificationJob) LessonUpdated(lessonID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := j.NotifyLesson(ctx, lessonID); err != nil {
			j.logger.Warn("lesson update notification failed",
				slog.String("lesson_id", lessonID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

// CourseUpdated handles a course change event in the background. It
// satisfies the course handler's notifier contract.
func (j *CourseNotificationJob) CourseUpdated(courseID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := j.NotifyCourse(ctx, courseID); err != nil {
			j.logger.Warn("course update notification failed",
				slog.String("course_id", courseID.String()),
				slog.String("error", err.Error()))
		}
	}()
}

// NotifyLesson resolves the lesson's course and sends subscriber emails.
// A lesson deleted before the event is processed is not an error.
func (j *CourseNotificationJob) NotifyLesson(ctx context.Context, lessonID uuid.UUID) (int, error) {
	lsn, err := lesson.Get(j.db.WithContext(ctx), lessonID)
	if err != nil {
		if errors.Is(err, lesson.ErrLessonNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return j.NotifyCourse(ctx, lsn.CourseID)
}

// NotifyCourse emails everyone following the course, unless a batch
// already went out within the window. Returns the number of recipients.
func (j *CourseNotificationJob) NotifyCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	db := j.db.WithContext(ctx)

	crs, err := course.Get(db, courseID)
	if err != nil {
		// A course removed between the trigger and the send has nobody
		// left to notify.
		if errors.Is(err, course.ErrCourseNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load course: %w", err)
	}

	recipients, err := subscription.SubscriberEmails(db, courseID)
	if err != nil {
		return 0, fmt.Errorf("load subscribers: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	claimed, err := course.ClaimNotificationSlot(db, courseID, time.Now().UTC(), NotificationWindow)
	if err != nil {
		return 0, fmt.Errorf("claim notification slot: %w", err)
	}
	if !claimed {
		j.logger.Debug("course inside notification quiet window",
			slog.String("course_id", courseID.String()))
		return 0, nil
	}

	subject := fmt.Sprintf("Course updated: %s", crs.Title)
	body := fmt.Sprintf("The course %q has new material. Visit your dashboard to check it out.", crs.Title)

	if err := j.sender.SendNotification(recipients, subject, body); err != nil {
		// The slot stays claimed; a failed batch still counts against
		// the window to avoid hammering the mail server.
		j.logger.Warn("subscriber notification delivery failed",
			slog.String("course_id", courseID.String()),
			slog.Int("recipients", len(recipients)),
			slog.String("error", err.Error()))
		return 0, nil
	}

	metrics.ObserveNotificationsSent(len(recipients))
	j.logger.Info("course subscribers notified",
		slog.String("course_id", courseID.String()),
		slog.Int("recipients", len(recipients)))

	return len(recipients), nil
}
