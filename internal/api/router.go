package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prasenjit/oas-minify/internal/events"
	"github.com/prasenjit/oas-minify/internal/stats"
	"github.com/prasenjit/oas-minify/internal/storage"
)

// Router handles HTTP routing.
type Router struct {
	engine  *gin.Engine
	feed    *events.Feed
	logger  *slog.Logger
	handler *Handler
}

// NewRouter creates a new router.
func NewRouter(store storage.Storage, statsCollector *stats.Collector, feed *events.Feed, defaults Defaults, logger *slog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Router{
		engine: gin.New(),
		feed:   feed,
		logger: logger,
	}

	r.handler = NewHandler(store, statsCollector, feed, defaults, logger)

	// Setup middleware
	r.engine.Use(gin.Recovery())
	r.engine.Use(corsMiddleware())
	r.engine.Use(requestLogger(logger))

	r.setupRoutes()

	return r
}

// setupRoutes configures all routes.
func (r *Router) setupRoutes() {
	api := r.engine.Group("/_api")
	{
		// Specs
		api.GET("/specs", r.handler.ListSpecs)
		api.POST("/specs", r.handler.CreateSpec)
		api.GET("/specs/:id", r.handler.GetSpec)
		api.PUT("/specs/:id", r.handler.UpdateSpec)
		api.DELETE("/specs/:id", r.handler.DeleteSpec)
		api.GET("/specs/:id/operations", r.handler.ListOperations)

		// Minification
		api.POST("/specs/:id/minify", r.handler.MinifySpec)
		api.POST("/minify", r.handler.MinifyInline)

		// Runs
		api.GET("/runs", r.handler.ListRuns)
		api.GET("/runs/:id", r.handler.GetRun)
		api.GET("/specs/:id/runs", r.handler.ListSpecRuns)

		// Live feed
		api.GET("/events", r.handler.ListEvents)
		api.DELETE("/events", r.handler.ClearEvents)

		// Statistics
		api.GET("/stats", r.handler.GetGlobalStats)
		api.GET("/stats/specs/:id", r.handler.GetSpecStats)
		api.POST("/stats/reset", r.handler.ResetStats)

		// Health
		api.GET("/health", r.handler.HealthCheck)
	}

	// WebSocket for live runs.
	wsHandler := events.NewWebSocketHandler(r.feed, r.logger)
	r.engine.GET("/_api/runs/stream", gin.WrapH(wsHandler))

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

// Handler returns the http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// corsMiddleware adds CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
