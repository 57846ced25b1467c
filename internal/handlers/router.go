package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/config"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type HandlerManager struct {
	applicationHandler *ApplicationHandler
	tutorHandler       *TutorHandler
	bookingHandler     *BookingHandler
	reviewHandler      *ReviewHandler
	paymentHandler     *PaymentHandler
	dashboardHandler   *DashboardHandler
	userHandler        *UserHandler
	authMiddleware     *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		applicationHandler: NewApplicationHandler(serviceManager.Application(), serviceManager.Export(), validator, logger),
		tutorHandler:       NewTutorHandler(serviceManager.Tutor(), serviceManager.Review(), validator, logger),
		bookingHandler:     NewBookingHandler(serviceManager.Booking(), serviceManager.Export(), validator, logger),
		reviewHandler:      NewReviewHandler(serviceManager.Review(), validator, logger),
		paymentHandler:     NewPaymentHandler(serviceManager.Payment(), serviceManager.Export(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), logger),
		userHandler:        NewUserHandler(userRepo, logger),
		authMiddleware:     authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Gateway webhook. Unauthenticated; trust comes from the HMAC signature.
	router.POST("/webhooks/paystack", hm.paymentHandler.HandleWebhook)

	v1 := router.Group("/api/v1")

	// Public tutor browsing
	tutorsPublic := v1.Group("/tutors")
	{
		tutorsPublic.GET("", hm.tutorHandler.ListTutors)
		tutorsPublic.GET("/search", hm.tutorHandler.SearchTutors)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Tutor self-service. The static /tutors/me segment takes precedence
		// over the public /tutors/:id wildcard.
		tutorsMe := authed.Group("/tutors/me")
		{
			tutorsMe.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.tutorHandler.GetMyProfile)
			tutorsMe.PUT("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.tutorHandler.UpdateMyProfile)
			tutorsMe.GET("/bookings", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.bookingHandler.GetTutorBookings)
			tutorsMe.GET("/dashboard", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.dashboardHandler.GetTutorDashboard)
		}

		// Tutor applications
		applications := authed.Group("/applications")
		{
			applications.POST("", hm.applicationHandler.SubmitApplication)
			applications.GET("/me", hm.applicationHandler.GetMyApplication)
			applications.POST("/me/resubmit", hm.applicationHandler.ResubmitApplication)
			applications.GET("/:id", hm.applicationHandler.GetApplication)
		}

		// Bookings
		bookings := authed.Group("/bookings")
		{
			bookings.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.bookingHandler.CreateBooking)
			bookings.GET("/me", hm.bookingHandler.GetMyBookings)
			bookings.GET("/:id", hm.bookingHandler.GetBooking)
			bookings.POST("/:id/confirm", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.bookingHandler.ConfirmBooking)
			bookings.POST("/:id/start", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.bookingHandler.StartBooking)
			bookings.POST("/:id/complete", hm.authMiddleware.RequireRoleMiddleware(models.RoleTutor), hm.bookingHandler.CompleteBooking)
			bookings.POST("/:id/cancel", hm.bookingHandler.CancelBooking)
		}

		// Current user profile
		authed.GET("/users/me", hm.userHandler.GetMe)

		// Reviews
		reviews := authed.Group("/reviews")
		{
			reviews.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.reviewHandler.CreateReview)
		}

		// Payments
		payments := authed.Group("/payments")
		{
			payments.POST("/application/initialize", hm.paymentHandler.InitializeApplicationPayment)
			payments.POST("/bookings/:id/initialize", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.paymentHandler.InitializeBookingPayment)
			payments.GET("/verify/:reference", hm.paymentHandler.VerifyPayment)
			payments.GET("/me", hm.paymentHandler.GetMyPayments)
			payments.GET("/:reference", hm.paymentHandler.GetPayment)
		}

		// Student dashboard
		students := authed.Group("/students")
		students.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			students.GET("/me/dashboard", hm.dashboardHandler.GetStudentDashboard)
		}

		// Admin routes
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/applications", hm.applicationHandler.ListApplications)
			admin.GET("/applications/stats", hm.applicationHandler.GetApplicationStats)
			admin.GET("/applications/export", hm.applicationHandler.ExportApplications)
			admin.POST("/applications/:id/approve", hm.applicationHandler.ApproveApplication)
			admin.POST("/applications/:id/reject", hm.applicationHandler.RejectApplication)
			admin.POST("/applications/:id/request-revision", hm.applicationHandler.RequestRevision)

			admin.GET("/bookings", hm.bookingHandler.ListBookings)
			admin.GET("/bookings/export", hm.bookingHandler.ExportBookings)

			admin.GET("/payments", hm.paymentHandler.ListPayments)
			admin.GET("/payments/export", hm.paymentHandler.ExportPayments)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.GET("/users/:id", hm.userHandler.GetUser)

			admin.GET("/dashboard", hm.dashboardHandler.GetAdminDashboard)
		}
	}

	// Public tutor profile and reviews
	tutorsPublic.GET("/:id", hm.tutorHandler.GetTutor)
	tutorsPublic.GET("/:id/reviews", hm.tutorHandler.GetTutorReviews)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "marketplace-service",
		})
	})
}
