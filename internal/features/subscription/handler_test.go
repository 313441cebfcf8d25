package subscription

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/internal/utils/jwt"
	"github.com/edusite/edusite-api/pkg/logger"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()

	log := logger.NewNop()
	middleware.Initialize(db, testSecret, log)

	router := gin.New()
	api := router.Group("/api")
	RegisterRoutes(api, NewHandler(db, log))
	return router
}

func bearerFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := jwt.GenerateAccessToken(userID, testSecret, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func toggleRequest(router *gin.Engine, courseID, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/courses/"+courseID+"/subscription", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestToggleEndpointRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	crs := createCourse(t, db, createUser(t, db, "author@example.com").ID)

	rec := toggleRequest(router, crs.ID.String(), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleEndpointUnknownCourse(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	usr := createUser(t, db, "student@example.com")

	rec := toggleRequest(router, uuid.NewString(), bearerFor(t, usr.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleEndpointInvalidCourseID(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	usr := createUser(t, db, "student@example.com")

	rec := toggleRequest(router, "not-a-uuid", bearerFor(t, usr.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleEndpointMessages(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	usr := createUser(t, db, "student@example.com")
	crs := createCourse(t, db, createUser(t, db, "author@example.com").ID)
	auth := bearerFor(t, usr.ID)

	rec := toggleRequest(router, crs.ID.String(), auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MessageAdded, messageOf(t, rec))

	rec = toggleRequest(router, crs.ID.String(), auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MessageRemoved, messageOf(t, rec))
}

func TestToggleEndpointDeactivatedUser(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db)
	usr := createUser(t, db, "student@example.com")
	crs := createCourse(t, db, createUser(t, db, "author@example.com").ID)

	require.NoError(t, db.Table("users").Where("id = ?", usr.ID).Update("is_active", false).Error)

	rec := toggleRequest(router, crs.ID.String(), bearerFor(t, usr.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
