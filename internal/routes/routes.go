package routes

import (
	"github.com/gin-gonic/gin"

	"taskhub/internal/handlers"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Tasks         *handlers.TaskHandler
	Shares        *handlers.SharedTaskHandler
	Comments      *handlers.CommentHandler
	Notifications *handlers.NotificationHandler
}

// SetupRoutes mounts the API under /api. auth guards everything except the
// credential endpoints.
func SetupRoutes(r *gin.Engine, h Handlers, auth gin.HandlerFunc) *gin.Engine {
	api := r.Group("/api")

	// ---- public
	public := api.Group("/auth")
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.RefreshToken)
		public.POST("/forgot-password", h.Auth.ForgotPassword)
		public.POST("/reset-password", h.Auth.ResetPassword)
	}

	// ---- protected
	protected := api.Group("", auth)
	protected.POST("/auth/logout", h.Auth.Logout)

	// USERS
	users := protected.Group("/users")
	{
		users.GET("/me", h.Users.Me)
		users.GET("", middleware.RequireRoles(models.RoleAdmin), h.Users.List)
		users.GET("/:id", h.Users.GetByID)
		users.PUT("/:id", h.Users.Update)
	}

	// TASKS
	tasks := protected.Group("/tasks")
	{
		tasks.GET("", h.Tasks.GetAll)
		tasks.POST("", h.Tasks.Create)
		tasks.GET("/export", h.Tasks.Export)
		tasks.GET("/:id", h.Tasks.GetByID)
		tasks.PUT("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
		tasks.PUT("/:id/status", h.Tasks.ChangeStatus)
		tasks.POST("/:id/share", h.Shares.Share)
		tasks.POST("/:id/comments", h.Comments.Add)
		tasks.GET("/:id/comments", h.Comments.List)
	}

	// SHARED TASKS
	shared := protected.Group("/shared-tasks")
	{
		shared.GET("", h.Shares.ListMine)
		shared.PUT("/:id", h.Shares.Update)
		shared.DELETE("/:id", h.Shares.Remove)
	}

	// NOTIFICATIONS
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.POST("/mark-read", h.Notifications.MarkAllRead)
	}

	return r
}
