package course

import (
	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/middleware"
)

// RegisterRoutes attaches course endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	courses := router.Group("/courses", middleware.AuthenticateToken())
	{
		courses.GET("", handler.List)
		courses.POST("", handler.Create)
		courses.GET("/:courseId", handler.GetByID)
		courses.PUT("/:courseId", handler.Update)
		courses.PATCH("/:courseId", handler.Update)
		courses.DELETE("/:courseId", handler.Delete)
	}
}
