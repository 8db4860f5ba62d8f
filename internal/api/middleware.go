package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/models"
	"github.com/bbookman/mom0mind/pkg/logger"
	"github.com/bbookman/mom0mind/pkg/ratelimiter"
)

// RequestLogMiddleware 创建一个 Gin 中间件，为每个请求记录一条
// 带请求上下文和结果状态码的结构化日志。
func RequestLogMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithRequest(models.RequestInfo{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			RemoteAddr: c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}).WithPayload(map[string]interface{}{
			"status":     c.Writer.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}

// RateLimitMiddleware 创建一个 Gin 中间件，按配置的算法对请求限流。
// 未启用时返回 nil，调用方应跳过注册。
func RateLimitMiddleware(cfg config.RateLimiterConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}

	var limiter ratelimiter.RateLimiter
	switch cfg.Algorithm {
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil {
			window = time.Minute
		}
		limiter = ratelimiter.NewFixedWindow(cfg.FixedWindow.Limit, window)
	default: // tokenBucket
		limiter = ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity)
	}

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "请求过于频繁，请稍后再试"})
			c.Abort()
			return
		}
		c.Next()
	}
}
