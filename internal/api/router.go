package api

import (
	"github.com/gin-gonic/gin"

	"github.com/bbookman/mom0mind/internal/config"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(a *API, cfg config.ServerConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogMiddleware(a.logger))

	router.GET("/healthz", a.HealthHandler)

	v1 := router.Group("/api/v1")
	if mw := RateLimitMiddleware(cfg.RateLimiter); mw != nil {
		v1.Use(mw)
	}
	{
		v1.POST("/memories", a.AddMemoryHandler)
		v1.GET("/memories", a.GetMemoriesHandler)
		v1.DELETE("/memories", a.ResetMemoriesHandler)
		v1.POST("/chat", a.ChatHandler)
		v1.POST("/diagnostics", a.DiagnoseHandler)
	}

	return router
}
