package user

import (
	"errors"
	"net/http"
	"regexp"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/middleware"
	"github.com/edusite/edusite-api/pkg/pagination"
	"github.com/edusite/edusite-api/pkg/request"
	"github.com/edusite/edusite-api/pkg/response"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Handler processes user HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

type registerRequest struct {
	Email     string  `json:"email" binding:"required"`
	Password  string  `json:"password" binding:"required"`
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	City      *string `json:"city"`
	Avatar    *string `json:"avatar"`
}

// Register creates a new account. Open to unauthenticated callers.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	if !emailRegex.MatchString(req.Email) {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid email format", nil)
		return
	}

	usr, err := Create(h.db, CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		City:      req.City,
		Avatar:    req.Avatar,
	})
	if err != nil {
		h.respondError(c, err, "failed to register user")
		return
	}

	response.Created(c, usr, "")
}

// List returns the paginated user directory with public fields only.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	users, total, err := List(h.db, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, PublicOfAll(users), "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single user. Owners get the detailed view with
// payment history, everyone else the public one.
func (h *Handler) GetByID(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	if requester.ID != usr.ID {
		response.Success(c, http.StatusOK, PublicOf(usr), "", nil)
		return
	}

	profile, err := ProfileOf(h.db, usr)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, profile, "", nil)
}

// Update modifies the requester's own profile.
func (h *Handler) Update(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if requester.ID != id {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You can only edit your own profile", nil)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["email"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "email must be a string", err)
			return
		}
		if !emailRegex.MatchString(str) {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid email format", nil)
			return
		}
		input.Email = &str
	}

	if value, ok := body["password"]; ok && value != nil {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "password must be a string", err)
			return
		}
		input.Password = &str
	}

	for field, dst := range map[string]**string{
		"username":  &input.Username,
		"firstName": &input.FirstName,
		"lastName":  &input.LastName,
		"phone":     &input.Phone,
		"city":      &input.City,
		"avatar":    &input.Avatar,
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

	usr, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Delete removes the requester's own account.
func (h *Handler) Delete(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if requester.ID != id {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You can only delete your own profile", nil)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already exists."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrNotOwner):
		status = http.StatusForbidden
		message = err.Error()
	default:
		if err.Error() == "email cannot be empty" {
			status = http.StatusBadRequest
			message = err.Error()
		}
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
