package handlers

import (
	"log/slog"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskforge-api/internal/constants"
	"github.com/yukikurage/taskforge-api/internal/middleware"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth       *services.AuthService
	Projects   *services.ProjectService
	Tasks      *services.TaskService
	Membership *services.MembershipService
	Analytics  *services.AnalyticsService
}

// NewRouter builds the gin engine with every /api route registered.
func NewRouter(logger *slog.Logger, db *gorm.DB, store sessions.Store, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	healthHandler := NewHealthHandler(db)
	authHandler := NewAuthHandler(svc.Auth)
	projectHandler := NewProjectHandler(svc.Projects)
	taskHandler := NewTaskHandler(svc.Tasks)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics)

	api := r.Group("/api")
	api.GET("/health", healthHandler.Check)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", middleware.RequireAuth(), authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(), middleware.LoadCurrentUser(svc.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)
		protected.PUT("/auth/change-password", authHandler.ChangePassword)

		protected.PATCH("/users/:id", middleware.RequireRole(models.RoleAdmin), authHandler.UpdateUser)

		protected.GET("/projects", projectHandler.ListProjects)
		protected.POST("/projects", projectHandler.CreateProject)
		protected.DELETE("/projects/:id", middleware.RequireRole(models.RoleAdmin), projectHandler.DeleteProject)

		project := protected.Group("/projects/:id")
		project.Use(middleware.RequireProjectAccess(svc.Membership))
		{
			project.GET("", projectHandler.GetProject)
			project.PUT("", projectHandler.UpdateProject)
			project.POST("/members", projectHandler.AddMember)
			project.DELETE("/members/:userId", projectHandler.RemoveMember)
			project.GET("/tasks", taskHandler.GetBoard)
			project.POST("/tasks", taskHandler.CreateTask)
			project.POST("/tasks/generate", taskHandler.GenerateTasks)
		}

		protected.PUT("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)
		protected.POST("/tasks/:id/comments", taskHandler.AddComment)
		protected.GET("/tasks/:id/comments", taskHandler.ListComments)

		protected.GET("/analytics/dashboard", analyticsHandler.GetDashboard)
	}

	return r
}
