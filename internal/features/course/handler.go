package course

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/authz"
	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/pkg/cache"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/request"
	"github.com/edusite/edusite-api/pkg/response"
	"github.com/edusite/edusite-api/pkg/types"
)

const detailCacheTTL = 5 * time.Minute

// UpdateNotifier receives course change events so subscribers can be
// emailed in the background.
type UpdateNotifier interface {
	CourseUpdated(courseID uuid.UUID)
}

// Handler processes course HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	cache    cache.Client
	notifier UpdateNotifier
}

// NewHandler constructs a course handler instance. The cache may be a
// disabled client; detail lookups then always hit the database. The
// notifier may be nil; updates then skip subscriber emails.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, notifier UpdateNotifier) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient, notifier: notifier}
}

// List returns the paginated course catalog. Moderators see everything,
// other users only their own courses.
func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	params := pagination.Extract(c)

	courses, total, err := List(h.db, requester.Subject(), params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

type createRequest struct {
	Title       string       `json:"title" binding:"required"`
	Preview     *string      `json:"preview"`
	Description *string      `json:"description"`
	Price       *types.Money `json:"price"`
}

// Create inserts a new course owned by the requester.
func (h *Handler) Create(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if !authz.CanCreateContent(requester.Subject()) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Moderators cannot create courses", nil)
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	input := CreateInput{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
		OwnerID:     requester.ID,
	}
	if req.Price != nil {
		input.Price = *req.Price
	}

	crs, err := Create(h.db, input)
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	response.Created(c, crs, "")
}

// GetByID fetches a single course with its lesson count.
func (h *Handler) GetByID(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := h.loadDetail(c, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !authz.CanViewContent(requester.Subject(), crs.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to view this course", nil)
		return
	}

	response.Success(c, http.StatusOK, crs, "", nil)
}

func (h *Handler) loadDetail(c *gin.Context, id uuid.UUID) (WithLessonsCount, error) {
	key := detailCacheKey(id)

	if cached, err := h.cache.Get(c.Request.Context(), key); err == nil {
		var crs WithLessonsCount
		if err := json.Unmarshal([]byte(cached), &crs); err == nil {
			return crs, nil
		}
	}

	crs, err := GetWithLessonsCount(h.db, id)
	if err != nil {
		return crs, err
	}

	if encoded, err := json.Marshal(crs); err == nil {
		if err := h.cache.Set(c.Request.Context(), key, string(encoded), detailCacheTTL); err != nil {
			h.logger.Warn("course cache write failed", slog.String("error", err.Error()))
		}
	}

	return crs, nil
}

func (h *Handler) invalidateDetail(c *gin.Context, id uuid.UUID) {
	if err := h.cache.Delete(c.Request.Context(), detailCacheKey(id)); err != nil {
		h.logger.Warn("course cache invalidation failed", slog.String("error", err.Error()))
	}
}

func detailCacheKey(id uuid.UUID) string {
	return "course:detail:" + id.String()
}

// Update modifies a course. Allowed for moderators and the owner.
func (h *Handler) Update(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !authz.CanEditContent(requester.Subject(), crs.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to edit this course", nil)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	input := UpdateInput{}

	for field, dst := range map[string]**string{
		"title":       &input.Title,
		"preview":     &input.Preview,
		"description": &input.Description,
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

	if value, ok := body["price"]; ok && value != nil {
		price, err := request.ReadMoney(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "price must be a number", err)
			return
		}
		input.Price = &price
	}

	updated, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	h.invalidateDetail(c, id)

	if h.notifier != nil {
		h.notifier.CourseUpdated(updated.ID)
	}

	response.Success(c, http.StatusOK, updated, "", nil)
}

// Delete removes a course. Owners only; moderators are excluded.
func (h *Handler) Delete(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !authz.CanDeleteCourse(requester.Subject(), crs.OwnerID) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not allowed to delete this course", nil)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	h.invalidateDetail(c, id)

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, ErrInvalidPrice):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
