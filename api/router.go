package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yourusername/xmd-bot/api/handlers"
	"github.com/yourusername/xmd-bot/api/middleware"
	"github.com/yourusername/xmd-bot/internal/app"
	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/pkg/logger"
)

// RouterDeps holds everything the HTTP API serves
type RouterDeps struct {
	Config   *domain.Config
	Resolver *app.DownloadResolver
	Reporter *app.StatusReporter
	History  domain.DownloadRepository // nil when history is disabled
	Conn     handlers.ConnectionChecker
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	Events   *logger.MultiLogger
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger, deps.Events))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(deps.Conn, deps.Config.Bot.Version)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Metrics
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		downloadHandler := handlers.NewDownloadHandler(deps.Resolver, deps.History, deps.Logger)
		v1.POST("/resolve", downloadHandler.Resolve)

		downloads := v1.Group("/downloads")
		{
			downloads.GET("", downloadHandler.ListDownloads)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetDownload)
		}

		statusHandler := handlers.NewStatusHandler(deps.Reporter, deps.Config.Bot.Name, deps.Config.Status.FallbackZone, deps.Logger)
		v1.GET("/status", statusHandler.Status)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})

	return router
}
