package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/config"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

type HandlerManager struct {
	catalogHandler      *CatalogHandler
	couponHandler       *CouponHandler
	enrollmentHandler   *EnrollmentHandler
	profileHandler      *ProfileHandler
	notificationHandler *NotificationHandler
	adminHandler        *AdminHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	profileRepo repositories.ProfileRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, profileRepo, serviceManager.Profile(), logger)

	return &HandlerManager{
		catalogHandler:      NewCatalogHandler(logger),
		couponHandler:       NewCouponHandler(serviceManager.Coupon(), logger),
		enrollmentHandler:   NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		profileHandler:      NewProfileHandler(serviceManager.Profile(), logger),
		notificationHandler: NewNotificationHandler(serviceManager.Notification(), logger),
		adminHandler:        NewAdminHandler(serviceManager.Moderation(), serviceManager.Export(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public routes: catalog browsing needs no account
	v1 := router.Group("/api/v1")
	{
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.catalogHandler.ListCourses)
			courses.GET("/:id", hm.catalogHandler.GetCourse)
		}
	}

	// Authenticated routes
	authed := router.Group("/api/v1")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.POST("/coupons/validate", hm.couponHandler.ValidateCoupon)

		enrollments := authed.Group("/enrollments")
		{
			enrollments.POST("", hm.enrollmentHandler.SubmitEnrollment)
			enrollments.GET("/me", hm.enrollmentHandler.ListMyEnrollments)
		}

		profiles := authed.Group("/profiles")
		{
			profiles.GET("/me", hm.profileHandler.GetMyProfile)
			profiles.PUT("/me", hm.profileHandler.UpdateMyProfile)
		}

		notifications := authed.Group("/notifications")
		{
			notifications.GET("", hm.notificationHandler.ListNotifications)
			notifications.GET("/unread-count", hm.notificationHandler.GetUnreadCount)
			notifications.PUT("/:id/read", hm.notificationHandler.MarkNotificationRead)
			notifications.PUT("/read-all", hm.notificationHandler.MarkAllNotificationsRead)
		}

		// Admin routes: role is read from the profiles table on every
		// request, before any handler runs
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireAdminMiddleware())
		{
			admin.GET("/enrollments", hm.adminHandler.ListPendingEnrollments)
			admin.POST("/enrollments/:id/approve", hm.adminHandler.ApproveEnrollment)
			admin.POST("/enrollments/:id/reject", hm.adminHandler.RejectEnrollment)
			admin.GET("/stats", hm.adminHandler.GetStats)
			admin.GET("/enrollments/export", hm.adminHandler.ExportEnrollments)

			admin.GET("/coupons", hm.couponHandler.ListCoupons)
			admin.POST("/coupons", hm.couponHandler.CreateCoupon)
			admin.DELETE("/coupons/:id", hm.couponHandler.DeactivateCoupon)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "enrollment-service",
		})
	})
}
