package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches token endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	token := router.Group("/token")
	{
		token.POST("", handler.Token)
		token.POST("/refresh", handler.Refresh)
	}
}
