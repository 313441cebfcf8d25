package subscription

import (
	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/middleware"
)

// RegisterRoutes attaches subscription endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.POST("/courses/:courseId/subscription", middleware.AuthenticateToken(), handler.Toggle)
}
