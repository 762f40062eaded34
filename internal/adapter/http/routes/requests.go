package routes

import (
	"github.com/Sam2op/ProjectEase/internal/adapter/http/handlers"
	"github.com/Sam2op/ProjectEase/internal/adapter/http/middleware"

	"github.com/gin-gonic/gin"
)

const (
	PathRequests = "/requests"
	PathPayments = "/payments"
)

func addRequestRoutes(rg *gin.RouterGroup, requestHandler *handlers.RequestHandler) {
	requests := rg.Group(PathRequests)
	{
		// Guests may submit without a token; registered users are picked
		// up from the bearer token when present.
		requests.POST("", middleware.OptionalAuth(), requestHandler.Create)

		requests.GET("/my", middleware.RequireAuth(), requestHandler.GetMine)
		requests.GET("/:id", middleware.RequireAuth(), requestHandler.GetByID)

		requests.GET("", middleware.RequireAuth(), middleware.RequireAdmin(), requestHandler.GetAll)
		requests.PUT("/:id", middleware.RequireAuth(), middleware.RequireAdmin(), requestHandler.Update)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentsGroup := rg.Group(PathPayments)
	{
		paymentsGroup.POST("/create-order", middleware.OptionalAuth(), paymentHandler.CreateOrder)
		paymentsGroup.POST("/verify", middleware.OptionalAuth(), paymentHandler.Verify)

		paymentsGroup.GET("/request/:id", middleware.RequireAuth(), middleware.RequireAdmin(), paymentHandler.GetCaptures)
	}
}
