package subscription

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
	"github.com/edusite/edusite-api/internal/features/user"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&user.User{}, &course.Course{}, &Subscription{}))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) user.User {
	t.Helper()

	usr, err := user.Create(db, user.CreateInput{Email: email, Password: "password123"})
	require.NoError(t, err)
	return usr
}

func createCourse(t *testing.T, db *gorm.DB, ownerID uuid.UUID) course.Course {
	t.Helper()

	crs, err := course.Create(db, course.CreateInput{Title: "Go basics", OwnerID: ownerID})
	require.NoError(t, err)
	return crs
}

func TestToggleAlternates(t *testing.T) {
	db := newTestDB(t)
	usr := createUser(t, db, "student@example.com")
	crs := createCourse(t, db, createUser(t, db, "author@example.com").ID)

	message, err := Toggle(db, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, MessageAdded, message)

	exists, err := Exists(db, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	message, err = Toggle(db, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, MessageRemoved, message)

	exists, err = Exists(db, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	message, err = Toggle(db, usr.ID, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, MessageAdded, message)
}

func TestToggleIsPerCourse(t *testing.T) {
	db := newTestDB(t)
	usr := createUser(t, db, "student@example.com")
	owner := createUser(t, db, "author@example.com")
	first := createCourse(t, db, owner.ID)
	second := createCourse(t, db, owner.ID)

	_, err := Toggle(db, usr.ID, first.ID)
	require.NoError(t, err)

	exists, err := Exists(db, usr.ID, second.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestToggleSettlesDuplicateAsRemoval(t *testing.T) {
	db := newTestDB(t)
	usr := createUser(t, db, "student@example.com")
	crs := createCourse(t, db, createUser(t, db, "author@example.com").ID)

	// Simulate a racing insert that landed between the delete and the
	// create inside the transaction.
	require.NoError(t, db.Create(&Subscription{UserID: usr.ID, CourseID: crs.ID}).Error)

	err := db.Create(&Subscription{UserID: usr.ID, CourseID: crs.ID}).Error
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestSubscriberEmails(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "author@example.com")
	crs := createCourse(t, db, owner.ID)

	first := createUser(t, db, "one@example.com")
	second := createUser(t, db, "two@example.com")
	createUser(t, db, "bystander@example.com")

	_, err := Toggle(db, first.ID, crs.ID)
	require.NoError(t, err)
	_, err = Toggle(db, second.ID, crs.ID)
	require.NoError(t, err)

	emails, err := SubscriberEmails(db, crs.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one@example.com", "two@example.com"}, emails)
}

func TestSubscriberEmailsSkipsBlankAddresses(t *testing.T) {
	db := newTestDB(t)
	owner := createUser(t, db, "author@example.com")
	crs := createCourse(t, db, owner.ID)

	reachable := createUser(t, db, "one@example.com")
	blank := createUser(t, db, "erased@example.com")

	_, err := Toggle(db, reachable.ID, crs.ID)
	require.NoError(t, err)
	_, err = Toggle(db, blank.ID, crs.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&user.User{}).Where("id = ?", blank.ID).Update("email", "").Error)

	emails, err := SubscriberEmails(db, crs.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com"}, emails)
}
