package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"complaintdesk/internal/authz"
	"complaintdesk/internal/handlers"
	"complaintdesk/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	userHandler *handlers.UserHandler,
	complaintHandler *handlers.ComplaintHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- public
	user := r.Group("/user")
	{
		user.POST("/signup", userHandler.Signup)
		user.POST("/login", userHandler.Login)
		user.PUT("/forget-password", userHandler.ForgetPassword)
		user.PUT("/resend-password-otp", userHandler.ResendPasswordOTP)
		user.PUT("/verify-password-otp", userHandler.VerifyPasswordOTP)
	}

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	userAuth := r.Group("/user")
	{
		userAuth.PUT("/change-password", userHandler.ChangePassword)
		userAuth.PUT("/reset-password", userHandler.ResetPassword)
	}

	complaints := r.Group("/complaints")
	{
		complaints.POST("/", complaintHandler.Create)
		complaints.GET("/", complaintHandler.ListMine)
		complaints.GET("/:id", complaintHandler.GetMine)
	}

	admin := r.Group("/admin", middleware.RequireRoles(authz.RoleAdmin))
	{
		admin.GET("/complaints", complaintHandler.AdminList)
		admin.GET("/complaints/report", complaintHandler.AdminReport)
		admin.GET("/complaints/:id", complaintHandler.AdminGet)
		admin.PUT("/complaints/:id/status", complaintHandler.AdminUpdateStatus)
	}

	return r
}
