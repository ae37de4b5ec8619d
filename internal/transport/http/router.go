package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/health"
	"mailroom/backend/internal/middleware"
	"mailroom/backend/internal/monitoring"
	"mailroom/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config   *config.Config
	Services *service.Services
	Metrics  *monitoring.Metrics     // 为空时不暴露 /metrics
	Health   *health.HealthChecker   // 为空时只提供简单的 /health
	Limiter  *middleware.RateLimiter // 为空时按配置创建
	Logger   *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	var onPanic, onBlock func()
	if deps.Metrics != nil {
		onPanic = deps.Metrics.RecordPanic
		onBlock = deps.Metrics.RecordRateLimitBlock
	}

	router.Use(middleware.RecoveryHandler(logger, onPanic))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(deps.Config.Server.MaxBodyBytes))
	router.Use(gincors.New(corsConfig(deps.Config.CORS)))

	// 健康检查与指标不经过限流
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Health != nil {
		router.GET("/health/live", gin.WrapF(deps.Health.LiveHandler()))
		router.GET("/health/ready", gin.WrapF(deps.Health.ReadyHandler()))
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(
			deps.Config.RateLimit.RequestsPerSecond,
			deps.Config.RateLimit.Burst,
			logger,
			onBlock,
		)
	}

	handler := NewHandler(deps.Services, logger)

	api := router.Group("/api")
	api.Use(middleware.AccountContext())
	api.Use(middleware.RequestLogger(logger))
	if deps.Metrics != nil {
		api.Use(middleware.HTTPMetrics(deps.Metrics))
	}
	api.Use(limiter.Middleware())
	{
		api.GET("", handler.handleGet)
		api.POST("", handler.handlePost)
	}

	return router
}

func corsConfig(cfg config.CORSConfig) gincors.Config {
	corsCfg := gincors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsCfg.AllowOrigins {
		if origin == "*" {
			corsCfg.AllowOrigins = nil
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowCredentials = false
			break
		}
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	return corsCfg
}
