package user

import (
	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/middleware"
)

// RegisterRoutes attaches user endpoints to the router. Registration is
// open; everything else requires a valid token.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	users := router.Group("/users")
	{
		users.POST("/register", handler.Register)
		users.GET("", middleware.AuthenticateToken(), handler.List)
		users.GET("/:userId", middleware.AuthenticateToken(), handler.GetByID)
		users.PUT("/:userId", middleware.AuthenticateToken(), handler.Update)
		users.PATCH("/:userId", middleware.AuthenticateToken(), handler.Update)
		users.DELETE("/:userId", middleware.AuthenticateToken(), handler.Delete)
	}
}
