package server

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/muchtodo/taskapi/docs"
	"github.com/muchtodo/taskapi/internal/handlers"
	"github.com/muchtodo/taskapi/internal/metrics"
)

type Handlers struct {
	Task   *handlers.TaskHandler
	Health *handlers.HealthHandler
}

// NewRouter wires middleware and routes onto a gin engine.
func NewRouter(h Handlers, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(recovery(log))
	r.Use(requestID())
	r.Use(requestLogger(log))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(allowedOrigins)))

	r.GET("/", h.Health.Root)
	r.GET("/api/hello", h.Health.Hello)
	r.GET("/test", h.Health.Diagnose)
	r.GET("/health", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)

	api := r.Group("/api")
	api.GET("/tasks", h.Task.ListTasks)
	api.POST("/tasks", h.Task.CreateTask)
	api.PATCH("/tasks/:id", h.Task.UpdateTask)
	api.DELETE("/tasks/:id", h.Task.DeleteTask)

	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: true,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
