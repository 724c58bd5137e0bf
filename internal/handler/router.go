// internal/handler/router.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/middleware"
)

// RouterConfig collects what the router is built from.
type RouterConfig struct {
	Projects     ProjectStore
	Tasks        TaskStore
	Auth         Authenticator
	DB           Pinger
	Logger       zerolog.Logger
	AllowOrigins []string
}

// NewRouter mounts every route under /api.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.MetadataExtractor(),
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
	)

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Message: "Route not found"})
	})

	projects := NewProjectHandler(cfg.Projects, cfg.Logger)
	tasks := NewTaskHandler(cfg.Tasks, cfg.Logger)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Logger)
	health := NewHealthHandler(cfg.DB)

	api := router.Group("/api")
	api.GET("/health", health.Check)
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(cfg.Auth))

	protected.POST("/logout", authHandler.Logout)
	protected.GET("/user", authHandler.Me)

	protected.GET("/projects", projects.List)
	protected.POST("/projects", projects.Create)
	protected.GET("/projects/:id", projects.Get)
	protected.PUT("/projects/:id", projects.Update)
	protected.PATCH("/projects/:id", projects.Update)
	protected.DELETE("/projects/:id", projects.Delete)
	protected.POST("/projects/:id/archive", projects.Archive)
	protected.POST("/projects/:id/unarchive", projects.Unarchive)

	protected.GET("/projects/:id/tasks", tasks.List)
	protected.POST("/projects/:id/tasks", tasks.Create)
	protected.GET("/projects/:id/tasks/:taskId", tasks.Get)
	protected.PUT("/projects/:id/tasks/:taskId", tasks.Update)
	protected.PATCH("/projects/:id/tasks/:taskId", tasks.Update)
	protected.DELETE("/projects/:id/tasks/:taskId", tasks.Delete)
	protected.POST("/projects/:id/tasks/:taskId/complete", tasks.Complete)
	protected.POST("/projects/:id/tasks/:taskId/uncomplete", tasks.Uncomplete)

	return router
}
