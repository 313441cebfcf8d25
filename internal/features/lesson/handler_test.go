package lesson_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/features/lesson"
	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/internal/utils/jwt"
	"github.com/edusite/edusite-api/pkg/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&user.User{}, &course.Course{}, &lesson.Lesson{}))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	log := logger.NewNop()
	middleware.Initialize(db, testSecret, log)

	router := gin.New()
	api := router.Group("/api")
	lesson.RegisterRoutes(api, lesson.NewHandler(db, log, nil))
	return router
}

func createUser(t *testing.T, db *gorm.DB, email string, staff bool) user.User {
	t.Helper()

	usr, err := user.Create(db, user.CreateInput{Email: email, Password: "password123"})
	require.NoError(t, err)

	if staff {
		require.NoError(t, db.Model(&user.User{}).Where("id = ?", usr.ID).Update("is_staff", true).Error)
	}
	return usr
}

func seedLesson(t *testing.T, db *gorm.DB, ownerID uuid.UUID) lesson.Lesson {
	t.Helper()

	crs, err := course.Create(db, course.CreateInput{Title: "Go basics", OwnerID: ownerID})
	require.NoError(t, err)

	lsn, err := lesson.Create(db, lesson.CreateInput{
		CourseID: crs.ID,
		Title:    "Interfaces",
		OwnerID:  ownerID,
	})
	require.NoError(t, err)
	return lsn
}

func deleteRequest(t *testing.T, router *gin.Engine, lessonID, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	token, err := jwt.GenerateAccessToken(userID, testSecret, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/lessons/"+lessonID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func lessonExists(t *testing.T, db *gorm.DB, id uuid.UUID) bool {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&lesson.Lesson{}).Where("id = ?", id).Count(&count).Error)
	return count > 0
}

func TestDeleteEndpointOwnerAllowed(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	owner := createUser(t, db, "author@example.com", false)
	lsn := seedLesson(t, db, owner.ID)

	rec := deleteRequest(t, router, lsn.ID, owner.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, lessonExists(t, db, lsn.ID))
}

func TestDeleteEndpointModeratorAllowed(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	owner := createUser(t, db, "author@example.com", false)
	moderator := createUser(t, db, "curator@example.com", true)
	lsn := seedLesson(t, db, owner.ID)

	rec := deleteRequest(t, router, lsn.ID, moderator.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, lessonExists(t, db, lsn.ID))
}

func TestDeleteEndpointModeratorOwnerAllowed(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	owner := createUser(t, db, "author@example.com", true)
	lsn := seedLesson(t, db, owner.ID)

	rec := deleteRequest(t, router, lsn.ID, owner.ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, lessonExists(t, db, lsn.ID))
}

func TestDeleteEndpointStrangerForbidden(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	owner := createUser(t, db, "author@example.com", false)
	stranger := createUser(t, db, "student@example.com", false)
	lsn := seedLesson(t, db, owner.ID)

	rec := deleteRequest(t, router, lsn.ID, stranger.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, lessonExists(t, db, lsn.ID))
}
