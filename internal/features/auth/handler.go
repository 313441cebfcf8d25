package auth

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edusite/edusite-api/pkg/config"
	"github.com/edusite/edusite-api/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{db: db, logger: logger, cfg: cfg}
}

// Token authenticates a user and returns an access/refresh pair.
func (h *Handler) Token(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	pair, err := Login(h.db, LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	response.Success(c, http.StatusOK, pair, "", nil)
}

// Refresh exchanges a refresh token for a fresh access token.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh payload", err)
		return
	}

	accessToken, err := Refresh(h.db, req.Refresh, h.tokenConfig())
	if err != nil {
		h.respondError(c, err, "refresh failed")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"access": accessToken}, "", nil)
}

func (h *Handler) tokenConfig() TokenConfig {
	return TokenConfig{
		JWTSecret:          h.cfg.JWTSecret,
		JWTRefreshSecret:   h.cfg.JWTRefreshSecret,
		AccessTokenExpiry:  h.cfg.AccessTokenExpiry,
		RefreshTokenExpiry: h.cfg.RefreshTokenExpiry,
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
