package user

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/payment"
	"github.com/edusite/edusite-api/internal/features/subscription"
	"github.com/edusite/edusite-api/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&User{},
		&course.Course{},
		&lesson.Lesson{},
		&subscription.Subscription{},
		&payment.Payment{},
	))
	return db
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesEmail(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{Email: "  Student@Example.COM ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", usr.Email)
	assert.True(t, usr.Active)
	assert.Nil(t, usr.LastLogin)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	db := newTestDB(t)

	_, err := Create(db, CreateInput{Email: "student@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	_, err := Create(db, CreateInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = Create(db, CreateInput{Email: "STUDENT@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestPasswordHashing(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)

	assert.NotEqual(t, "password123", usr.Password)
	assert.True(t, usr.ComparePassword("password123"))
	assert.False(t, usr.ComparePassword("other-password"))
}

func TestUpdateProfileFields(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)

	updated, err := Update(db, usr.ID, UpdateInput{
		FirstName: strPtr("Ivan"),
		City:      strPtr("Novosibirsk"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Ivan", *updated.FirstName)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Novosibirsk", *updated.City)
	assert.Equal(t, "student@example.com", updated.Email)
}

func TestPublicProfileHidesPrivateFields(t *testing.T) {
	usr := User{
		Email:     "student@example.com",
		Username:  strPtr("ivan"),
		FirstName: strPtr("Ivan"),
		LastName:  strPtr("Petrov"),
		Phone:     strPtr("+7 900 000 00 00"),
		City:      strPtr("Omsk"),
	}

	public := PublicOf(usr)

	assert.Equal(t, usr.Username, public.Username)
	assert.Equal(t, usr.FirstName, public.FirstName)
	assert.Equal(t, usr.City, public.City)
}

func TestProfileIncludesOwnPaymentsOnly(t *testing.T) {
	db := newTestDB(t)

	usr, err := Create(db, CreateInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)
	other, err := Create(db, CreateInput{Email: "other@example.com", Password: "password123"})
	require.NoError(t, err)

	courseID := usr.ID // any uuid works as a course reference here
	_, err = payment.Create(db, payment.CreateInput{
		UserID:   usr.ID,
		CourseID: &courseID,
		Amount:   types.NewMoney(50),
		Method:   types.PaymentMethodCash,
	})
	require.NoError(t, err)

	_, err = payment.Create(db, payment.CreateInput{
		UserID:   other.ID,
		CourseID: &courseID,
		Amount:   types.NewMoney(60),
		Method:   types.PaymentMethodCash,
	})
	require.NoError(t, err)

	profile, err := ProfileOf(db, usr)
	require.NoError(t, err)
	require.Len(t, profile.Payments, 1)
	assert.Equal(t, usr.ID, profile.Payments[0].UserID)
}

func TestDeleteUnknownUser(t *testing.T) {
	db := newTestDB(t)

	err := Delete(db, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteCascadesOwnedContent(t *testing.T) {
	db := newTestDB(t)

	author, err := Create(db, CreateInput{Email: "author@example.com", Password: "password123"})
	require.NoError(t, err)
	student, err := Create(db, CreateInput{Email: "student@example.com", Password: "password123"})
	require.NoError(t, err)

	owned, err := course.Create(db, course.CreateInput{Title: "Doomed", OwnerID: author.ID})
	require.NoError(t, err)
	theirs, err := course.Create(db, course.CreateInput{Title: "Survivor", OwnerID: student.ID})
	require.NoError(t, err)

	_, err = lesson.Create(db, lesson.CreateInput{CourseID: owned.ID, Title: "Gone", OwnerID: author.ID})
	require.NoError(t, err)

	// The student follows the doomed course; that row must go with it.
	_, err = subscription.Toggle(db, student.ID, owned.ID)
	require.NoError(t, err)
	_, err = subscription.Toggle(db, author.ID, theirs.ID)
	require.NoError(t, err)

	courseRef := owned.ID
	_, err = payment.Create(db, payment.CreateInput{
		UserID:   author.ID,
		CourseID: &courseRef,
		Amount:   types.NewMoney(10),
		Method:   types.PaymentMethodCash,
	})
	require.NoError(t, err)

	require.NoError(t, Delete(db, author.ID))

	_, err = Get(db, author.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = course.Get(db, owned.ID)
	assert.ErrorIs(t, err, course.ErrCourseNotFound)

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
		return n
	}

	assert.Zero(t, count(&lesson.Lesson{}, "course_id = ?", owned.ID))
	assert.Zero(t, count(&subscription.Subscription{}, "course_id = ? OR user_id = ?", owned.ID, author.ID))
	assert.Zero(t, count(&payment.Payment{}, "user_id = ?", author.ID))

	// The student's own course survives; the author's row following it is gone.
	_, err = course.Get(db, theirs.ID)
	assert.NoError(t, err)
	assert.Zero(t, count(&subscription.Subscription{}, "user_id = ? AND course_id = ?", author.ID, theirs.ID))
}
