package lesson

import (
	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/middleware"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	lessons := router.Group("/lessons", middleware.AuthenticateToken())
	{
		lessons.GET("", handler.List)
		lessons.POST("", handler.Create)
		lessons.GET("/:lessonId", handler.GetByID)
		lessons.PUT("/:lessonId", handler.Update)
		lessons.PATCH("/:lessonId", handler.Update)
		lessons.DELETE("/:lessonId", handler.Delete)
	}
}
