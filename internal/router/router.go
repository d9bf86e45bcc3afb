package router

import (
	"net/http"
	"time"

	"renthub/internal/database"
	"renthub/internal/handlers"
	"renthub/internal/middleware"
	"renthub/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine with middleware and all routes.
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	registerRoutes(router)
	return router
}

func registerRoutes(router *gin.Engine) {
	db := database.GetDB()

	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db, database.GetRedisQueue())
	propertyService := services.NewPropertyService(db)
	agreementService := services.NewAgreementService(db)
	requestService := services.NewPropertyRequestService(db, notificationService)
	paymentService := services.NewPaymentService(db, notificationService)
	maintenanceService := services.NewMaintenanceService(db, notificationService)

	auth := middleware.NewAuthMiddleware(userService)

	api := router.Group("/api/v1")
	{
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// authentication (no token required except /me)
		authHandler := handlers.NewAuthHandler(userService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// properties: public browsing, landlord-scoped writes
		propertyHandler := handlers.NewPropertyHandler(propertyService)
		properties := api.Group("/properties")
		{
			properties.GET("", propertyHandler.List)
			properties.GET("/:id", propertyHandler.GetByID)
			properties.GET("/mine/list", auth.RequireLogin(), auth.RequireLandlord(), propertyHandler.Mine)
			properties.POST("", auth.RequireLogin(), auth.RequireLandlord(), propertyHandler.Create)
			properties.PUT("/:id", auth.RequireLogin(), auth.RequireLandlord(), propertyHandler.Update)
			properties.DELETE("/:id", auth.RequireLogin(), auth.RequireLandlord(), propertyHandler.Delete)
		}

		// agreements: landlord only
		agreementHandler := handlers.NewAgreementHandler(agreementService)
		agreements := api.Group("/agreements", auth.RequireLogin(), auth.RequireLandlord())
		{
			agreements.POST("", agreementHandler.Create)
			agreements.GET("", agreementHandler.List)
			agreements.GET("/:id", agreementHandler.GetByID)
			agreements.PUT("/:id", agreementHandler.Update)
			agreements.DELETE("/:id", agreementHandler.Delete)
			agreements.POST("/:id/documents", agreementHandler.UploadDocuments)
			agreements.DELETE("/:id/documents/:docId", agreementHandler.RemoveDocument)
		}

		// property requests: the workflow core
		requestHandler := handlers.NewPropertyRequestHandler(requestService)
		requests := api.Group("/property-requests", auth.RequireLogin())
		{
			requests.POST("", auth.RequireTenant(), requestHandler.Create)
			requests.GET("/landlord", auth.RequireLandlord(), requestHandler.ListForLandlord)
			requests.GET("/tenant", auth.RequireTenant(), requestHandler.ListForTenant)
			requests.GET("/stats/summary", auth.RequireLandlord(), requestHandler.Stats)
			requests.GET("/:id", requestHandler.GetByID)
			requests.PUT("/:id/respond", auth.RequireLandlord(), requestHandler.Respond)
			requests.PUT("/:id/send-agreement", auth.RequireLandlord(), requestHandler.SendAgreement)
			requests.PUT("/:id/accept-agreement", auth.RequireTenant(), requestHandler.AcceptAgreement)
			requests.PUT("/:id/reject-agreement", auth.RequireTenant(), requestHandler.RejectAgreement)
			requests.PUT("/:id/complete-assignment", auth.RequireLandlord(), requestHandler.CompleteAssignment)
		}

		// payments
		paymentHandler := handlers.NewPaymentHandler(paymentService)
		payments := api.Group("/payments", auth.RequireLogin())
		{
			payments.GET("", paymentHandler.List)
			payments.POST("", auth.RequireLandlord(), paymentHandler.Create)
			payments.PUT("/:id/pay", auth.RequireTenant(), paymentHandler.Pay)
		}

		// maintenance
		maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
		maintenance := api.Group("/maintenance", auth.RequireLogin())
		{
			maintenance.GET("", maintenanceHandler.List)
			maintenance.POST("", auth.RequireTenant(), maintenanceHandler.Create)
			maintenance.PUT("/:id/status", auth.RequireLandlord(), maintenanceHandler.UpdateStatus)
		}

		// notifications
		notificationHandler := handlers.NewNotificationHandler(notificationService)
		notifications := api.Group("/notifications", auth.RequireLogin())
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// live stream; authenticates via query token inside the handler
		wsHandler := handlers.NewWebSocketHandler(userService)
		api.GET("/ws/notifications", wsHandler.Notifications)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
