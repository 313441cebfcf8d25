package jobs

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/subscription"
	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/pkg/logger"
)

type fakeSender struct {
	calls [][]string
	fail  bool
}

func (f *fakeSender) SendNotification(to []string, subject, body string) error {
	f.calls = append(f.calls, to)
	if f.fail {
		return fmt.Errorf("smtp unavailable")
	}
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&user.User{}, &course.Course{}, &lesson.Lesson{}, &subscription.Subscription{}))
	return db
}

func seedCourseWithSubscribers(t *testing.T, db *gorm.DB, emails ...string) course.Course {
	t.Helper()

	owner, err := user.Create(db, user.CreateInput{Email: "author@example.com", Password: "password123"})
	require.NoError(t, err)

	crs, err := course.Create(db, course.CreateInput{Title: "Go basics", OwnerID: owner.ID})
	require.NoError(t, err)

	for _, email := range emails {
		usr, err := user.Create(db, user.CreateInput{Email: email, Password: "password123"})
		require.NoError(t, err)
		_, err = subscription.Toggle(db, usr.ID, crs.ID)
		require.NoError(t, err)
	}

	return crs
}

func TestNotifyCourseSendsToSubscribers(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	crs := seedCourseWithSubscribers(t, db, "one@example.com", "two@example.com")

	sent, err := job.NotifyCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	require.Len(t, sender.calls, 1)
	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, sender.calls[0])
}

func TestNotifyCourseThrottlesWithinWindow(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	crs := seedCourseWithSubscribers(t, db, "one@example.com")

	sent, err := job.NotifyCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = job.NotifyCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, sender.calls, 1)
}

func TestNotifyCourseSkipsWithoutSubscribers(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	crs := seedCourseWithSubscribers(t, db)

	sent, err := job.NotifyCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, sender.calls)

	// The quiet window must not start when nothing was sent.
	reloaded, err := course.Get(db, crs.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.LastNotificationSentAt)
}

func TestNotifyCourseUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	sent, err := job.NotifyCourse(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.calls)
}

func TestNotifyLessonUnknownLesson(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	sent, err := job.NotifyLesson(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, sender.calls)
}

func TestNotifyCourseDeliveryFailureStillClaimsWindow(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{fail: true}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	crs := seedCourseWithSubscribers(t, db, "one@example.com")

	sent, err := job.NotifyCourse(context.Background(), crs.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	reloaded, err := course.Get(db, crs.ID)
	require.NoError(t, err)
	assert.NotNil(t, reloaded.LastNotificationSentAt)
}

func TestNotifyLessonResolvesCourse(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	job := NewCourseNotificationJob(db, logger.NewNop(), sender)

	crs := seedCourseWithSubscribers(t, db, "one@example.com")

	lsn, err := lesson.Create(db, lesson.CreateInput{
		CourseID: crs.ID,
		Title:    "Interfaces",
		OwnerID:  *crs.OwnerID,
	})
	require.NoError(t, err)

	sent, err := job.NotifyLesson(context.Background(), lsn.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
