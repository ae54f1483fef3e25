package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/config"
	"resumeforge/internal/metrics"
)

// NewRouter 构建 Gin 引擎并挂载公共中间件、健康检查与指标端点。
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics",
		middleware.InternalSecretMiddleware(cfg.API.InternalSecret),
		gin.WrapH(promhttp.Handler()),
	)

	return router
}
