package main

import (
	"github.com/gin-gonic/gin"
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/middleware"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for the public auth routes
	authLimiter := middleware.NewRateLimiter(svc.cfg.RateLimit.RPS, svc.cfg.RateLimit.Burst)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "taskforge"})
	})

	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authLimiter.Middleware(), svc.authHandler.Signup)
			auth.POST("/login", authLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(db, svc.revocation), svc.authHandler.Logout)
		}

		// Everything below requires authentication
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(db, svc.revocation))
		{
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)

			// Users (admin only)
			users := protected.Group("/users", middleware.AdminRequired())
			{
				users.GET("", svc.userHandler.List)
				users.GET("/:id", svc.userHandler.Get)
				users.PUT("/update/:id", svc.userHandler.Update)
				users.DELETE("/delete/:id", svc.userHandler.Delete)
			}

			// Projects: mutations are admin-only by route policy; reads go
			// through the authorization engine
			projects := protected.Group("/projects")
			{
				projects.POST("", middleware.AdminRequired(), svc.projectHandler.Create)
				projects.GET("", svc.projectHandler.List)
				projects.GET("/:id", middleware.ProjectScope(db, authz.OpProjectView), svc.projectHandler.Get)
				projects.PUT("/:id", middleware.AdminRequired(), svc.projectHandler.Update)
				projects.DELETE("/:id", middleware.AdminRequired(), svc.projectHandler.Delete)
				projects.POST("/:id/assign", middleware.AdminRequired(), svc.projectHandler.AssignMembers)
			}

			// Tasks: every route is gated by the engine's decision table
			tasks := protected.Group("/tasks")
			{
				tasks.GET("/projects/:projectId/tasks", middleware.ProjectScope(db, authz.OpTaskList), svc.taskHandler.List)
				tasks.POST("/projects/:projectId/tasks", middleware.ProjectScope(db, authz.OpTaskCreate), svc.taskHandler.Create)
				tasks.GET("/:id", middleware.TaskScope(db, authz.OpTaskView), svc.taskHandler.Get)
				tasks.PUT("/:id", middleware.TaskScope(db, authz.OpTaskUpdate), svc.taskHandler.Update)
				tasks.DELETE("/:id", middleware.TaskScope(db, authz.OpTaskDelete), svc.taskHandler.Delete)
			}
		}
	}
}
