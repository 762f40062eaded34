package routes

import (
	"context"
	"log"

	_ "github.com/Sam2op/ProjectEase/docs" // This will be auto-generated
	"github.com/Sam2op/ProjectEase/internal/adapter/http/handlers"
	"github.com/Sam2op/ProjectEase/internal/adapter/persistence/repository"
	"github.com/Sam2op/ProjectEase/internal/config"
	"github.com/Sam2op/ProjectEase/internal/infrastructure/database"
	"github.com/Sam2op/ProjectEase/internal/infrastructure/notifications"
	"github.com/Sam2op/ProjectEase/internal/infrastructure/payments"
	"github.com/Sam2op/ProjectEase/internal/usecase"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"
	"github.com/Sam2op/ProjectEase/pkg"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

var router = gin.Default()

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	if err := router.Run(":" + config.AppConfig.AppPort); err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	logger := pkg.GetLogger()
	ddb := database.ConnectDynamoDB()

	requestRepo := repository.NewRequestDynamoRepository(ddb)
	orderRepo := repository.NewPaymentOrderDynamoRepository(ddb)
	captureRepo := repository.NewPaymentCaptureDynamoRepository(ddb)

	var notifier interfaces.INotificationGateway
	mailer, err := notifications.NewSESMailer(context.Background(), config.AppConfig.SenderEmail)
	if err != nil {
		logger.Warn("mail gateway not configured", zap.Error(err))
	} else {
		notifier = mailer
	}

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(
		config.AppConfig.MercadoPagoAccessToken,
		config.AppConfig.MercadoPagoWebhookSecret,
	)
	if err != nil {
		logger.Warn("payment gateway not configured", zap.Error(err))
	} else {
		paymentGateway = mpGateway
	}

	requestUseCase := usecase.NewRequestUseCase(requestRepo, notifier, config.AppConfig.AdminEmail, logger)
	paymentUseCase := usecase.NewPaymentUseCase(
		requestRepo, orderRepo, captureRepo,
		paymentGateway, notifier,
		config.AppConfig.PaymentCurrency, config.AppConfig.AdminEmail,
		logger,
	)

	requestHandler := handlers.NewRequestHandler(requestUseCase)
	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addRequestRoutes(v1, requestHandler)
	addPaymentRoutes(v1, paymentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
