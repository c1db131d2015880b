package routes

import (
	"net/http"

	"cache-viewer/internal/cache"
	"cache-viewer/internal/handlers"
	"cache-viewer/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newRouter(log zerolog.Logger, name string) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger(log))
	ginRouter.Use(middleware.CORSMiddleware())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": name + " is running",
		})
	})
	return ginRouter
}

// SetupCacheRoutes serves the remote cache API over c.
func SetupCacheRoutes(c cache.Cache, maxTTL int64, log zerolog.Logger) *gin.Engine {
	ginRouter := newRouter(log, "Cache service")
	h := handlers.NewCacheHandler(c, maxTTL)

	api := ginRouter.Group("/api")
	{
		api.GET("/cache", h.GetAll)
		api.GET("/cache/:key", h.Get)
		api.POST("/cache", h.Set)
		api.DELETE("/cache/:key", h.Delete)
		api.DELETE("/cache", h.Clear)
	}
	return ginRouter
}

// SetupGatewayRoutes exposes the viewer's intents, snapshot and live stream.
func SetupGatewayRoutes(h *handlers.GatewayHandler, log zerolog.Logger) *gin.Engine {
	ginRouter := newRouter(log, "Cache viewer gateway")

	api := ginRouter.Group("/api")
	{
		api.GET("/snapshot", h.Snapshot)
		api.GET("/activity", h.Activity)
		api.POST("/refresh", h.Refresh)

		// Entry intents
		api.POST("/entries", h.AddEntry)
		api.DELETE("/entries", h.ClearAll)
		api.DELETE("/entries/:key", h.DeleteEntry)
		api.POST("/entries/:key/refresh", h.RefreshOne)
	}

	ginRouter.GET("/ws", h.Stream)
	return ginRouter
}
