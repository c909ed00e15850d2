package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"telecare-server/internal/config"
	"telecare-server/internal/consultation"
	"telecare-server/internal/handlers"
	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/rooms"
	"telecare-server/internal/wallet"
)

// SetupRoutes wires the domain services and configures the application routes.
// It returns the consultation service so the caller can hand it to the
// background sweeper.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) *consultation.Service {
	ledger := wallet.NewLedger(wallet.NewGormStore(db), logger)

	store := consultation.NewGormStore(db)
	consultationSvc := consultation.NewService(store, store, store, ledger, cfg.PlatformFeeRate, logger)

	issuer := rooms.NewTokenIssuer(cfg.RoomTokenSecret, time.Duration(cfg.RoomTokenTTLMinutes)*time.Minute)
	joinWindow := time.Duration(cfg.JoinWindowMinutes) * time.Minute

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	consultationHandler := handlers.NewConsultationHandler(db, consultationSvc, issuer, joinWindow)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	messageHandler := handlers.NewMessageHandler(db, joinWindow)
	walletHandler := handlers.NewWalletHandler(ledger)
	analyticsHandler := handlers.NewAnalyticsHandler(db)
	metricHandler := handlers.NewHealthMetricHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		userRoutes := private.Group("/users")
		{
			// Doctor directory - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Doctors manage their own practice profile
			userRoutes.PUT("/doctor-profile", middleware.RoleAuthMiddleware(models.RoleDoctor), userHandler.UpdateDoctorProfile)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
				adminRoutes.GET("/verifications/pending", userHandler.GetPendingVerifications)
				adminRoutes.PATCH("/:id/verification", userHandler.UpdateVerificationStatus)
			}
		}

		consultationRoutes := private.Group("/consultations")
		{
			consultationRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), consultationHandler.Book)
			consultationRoutes.GET("", consultationHandler.GetConsultations)
			consultationRoutes.GET("/:id", consultationHandler.GetConsultationByID)
			consultationRoutes.PATCH("/:id/accept", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), consultationHandler.Accept)
			consultationRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), consultationHandler.Complete)
			consultationRoutes.PATCH("/:id/cancel", consultationHandler.Cancel)
			consultationRoutes.POST("/:id/join", consultationHandler.Join)

			// Chat lives under its consultation
			consultationRoutes.POST("/:id/messages", messageHandler.SendMessage)
			consultationRoutes.GET("/:id/messages", messageHandler.GetMessages)
			consultationRoutes.GET("/:id/messages/new", messageHandler.GetNewMessages)
			consultationRoutes.PATCH("/:id/messages/read", messageHandler.MarkRead)

			consultationRoutes.GET("/:id/prescription", prescriptionHandler.GetByConsultation)
		}

		messageRoutes := private.Group("/messages")
		{
			messageRoutes.GET("/unread-count", messageHandler.UnreadCount)
		}

		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.GET("", middleware.RoleAuthMiddleware(models.RolePatient), prescriptionHandler.GetMyPrescriptions)
			prescriptionRoutes.GET("/:id", prescriptionHandler.GetPrescriptionByID)
		}

		walletRoutes := private.Group("/wallet")
		{
			walletRoutes.GET("/balance", walletHandler.GetBalance)
			walletRoutes.GET("/transactions", walletHandler.GetHistory)
			walletRoutes.POST("/add-funds", middleware.RoleAuthMiddleware(models.RolePatient), walletHandler.AddFunds)
		}

		metricRoutes := private.Group("/health-metrics")
		metricRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient))
		{
			metricRoutes.POST("", metricHandler.CreateHealthMetric)
			metricRoutes.GET("", metricHandler.GetHealthMetrics)
		}

		analyticsRoutes := private.Group("/analytics")
		analyticsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			analyticsRoutes.GET("/overview", analyticsHandler.GetOverview)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	return consultationSvc
}
