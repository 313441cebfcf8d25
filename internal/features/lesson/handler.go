package lesson

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/authz"
	"github.com/edusite/edusite-api/internal/features/course"
	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/request"
	"github.com/edusite/edusite-api/pkg/response"
)

// UpdateNotifier receives lesson change events so course subscribers can
// be emailed in the background.
type UpdateNotifier interface {
	LessonUpdated(lessonID uuid.UUID)
}

// Handler processes lesson HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	notifier UpdateNotifier
}

// NewHandler constructs a lesson handler instance. The notifier may be
// nil; updates then skip subscriber emails.
func NewHandler(db *gorm.DB, logger *slog.Logger, notifier UpdateNotifier) *Handler {
	return &Handler{db: db, logger: logger, notifier: notifier}
}

// List returns paginated lessons, optionally scoped to one course.
// Moderators see everything, other users only their own lessons.
func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	params := pagination.Extract(c)
	filters := ListFilters{}

	if raw := c.Query("course"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course filter", err)
			return
		}
		filters.CourseID = &id
	}

	lessons, total, err := List(h.db, requester.Subject(), filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lessons", err)
		return
	}

	response.Success(c, http.StatusOK, lessons, "", pagination.MetadataFrom(total, params))
}

type createRequest struct {
	CourseID    string  `json:"courseId" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Preview     *string `json:"preview"`
	VideoURL    *string `json:"videoUrl"`
}

// Create inserts a new lesson owned by the requester.
func (h *Handler) Create(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if !authz.CanCreateContent(requester.Subject()) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Moderators cannot create lessons", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	if _, err := course.Get(h.db, courseID); err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	lsn, err := Create(h.db, CreateInput{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Preview:     req.Preview,
		VideoURL:    req.VideoURL,
		OwnerID:     requester.ID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create lesson")
		return
	}

	response.Created(c, lsn, "")
}

// GetByID fetches a single lesson.
func (h *Handler) GetByID(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if !authz.CanViewContent(requester.Subject(), lsn.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to view this lesson", nil)
		return
	}

	response.Success(c, http.StatusOK, lsn, "", nil)
}

// Update modifies a lesson and notifies course subscribers.
func (h *Handler) Update(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if !authz.CanEditContent(requester.Subject(), lsn.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to edit this lesson", nil)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	input := UpdateInput{}

	for field, dst := range map[string]**string{
		"title":       &input.Title,
		"description": &input.Description,
		"preview":     &input.Preview,
		"videoUrl":    &input.VideoURL,
	} {
		if value, ok := body[field]; ok && value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" must be a string", err)
				return
			}
			*dst = &str
		}
	}

	updated, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	if h.notifier != nil {
		h.notifier.LessonUpdated(updated.ID)
	}

	response.Success(c, http.StatusOK, updated, "", nil)
}

// Delete removes a lesson. Allowed for moderators and the owner.
func (h *Handler) Delete(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	lsn, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if !authz.CanDeleteLesson(requester.Subject(), lsn.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to delete this lesson", nil)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrInvalidVideoURL):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
