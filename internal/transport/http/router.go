package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/azamatb/todo-tracker/internal/repository"
	"github.com/azamatb/todo-tracker/internal/transport/http/handler"
	"github.com/azamatb/todo-tracker/internal/transport/http/middleware"
	"github.com/azamatb/todo-tracker/internal/usecase"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	CORSOrigin     string
	RequestTimeout int // seconds
}

// Pinger is satisfied by *pgxpool.Pool; the banner and health routes
// report database connectivity through it.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	authUsecase *usecase.AuthUsecase,
	users repository.UserRepository,
	db Pinger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sloggin.New(logger.With("component", "http")))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.Security())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeout) * time.Second))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Todo Tracker API",
			"version":  "1.0.0",
			"status":   "running",
			"database": dbStatus(c, db),
		})
	})
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  dbStatus(c, db),
		})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me",
			middleware.Auth(authUsecase),
			middleware.RequireUser(users, logger),
			authHandler.Me)
	}

	// Every task route sits behind the full guard chain: token check,
	// then user resolution. No store access happens on rejection.
	todos := r.Group("/api/todos",
		middleware.Auth(authUsecase),
		middleware.RequireUser(users, logger))
	{
		todos.GET("", taskHandler.List)
		todos.POST("", taskHandler.Create)
		todos.GET("/due-soon", taskHandler.DueSoon)
		todos.GET("/stats/summary", taskHandler.Summary)
		todos.GET("/:id", taskHandler.GetByID)
		todos.PUT("/:id", taskHandler.Update)
		todos.PATCH("/:id/toggle", taskHandler.Toggle)
		todos.DELETE("/:id", taskHandler.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	return r
}

func dbStatus(c *gin.Context, db Pinger) string {
	if err := db.Ping(c.Request.Context()); err != nil {
		return "disconnected"
	}
	return "connected"
}
