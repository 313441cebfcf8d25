package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/edusite/edusite-api/internal/middleware"
)

// RegisterRoutes attaches payment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	payments := router.Group("/payments", middleware.AuthenticateToken())
	{
		payments.GET("", handler.List)
		payments.POST("", handler.Create)
		payments.GET("/:paymentId", handler.GetByID)
		payments.POST("/checkout", handler.Checkout)
		payments.GET("/checkout/:sessionId", handler.CheckoutStatus)
	}
}
