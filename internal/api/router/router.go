package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftswap/config"
	"shiftswap/internal/api/handler"
	"shiftswap/internal/api/middleware"
	"shiftswap/internal/metrics"
	"shiftswap/pkg/jwt"
	"shiftswap/pkg/redis"
)

const healthTimeout = 2 * time.Second

// Setup 初始化并返回 Gin 路由引擎
//
// rdb 为空时关闭 Token 黑名单与限流；db 为空时健康检查跳过数据库。
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	db *gorm.DB,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	var (
		blacklist middleware.Blacklist
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}
	if m != nil {
		r.Use(m.Middleware())
	}

	// ── 健康检查 ──
	r.GET("/health", healthHandler(db, rdb))

	if m != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	writeLimit := middleware.RateLimit(nil, 0, 0)
	if cfg.Server.RateLimit.Limit > 0 {
		writeLimit = middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", writeLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 换班申请模块
			swaps := authorized.Group("/swap-requests")
			{
				swaps.GET("", h.Swap.List)
				swaps.POST("", writeLimit, h.Swap.Create)
				swaps.GET("/export", h.Swap.Export)
				swaps.GET("/:id", h.Swap.Get)
				swaps.POST("/:id/approve", writeLimit, h.Swap.Approve)
				swaps.POST("/:id/decline", writeLimit, h.Swap.Decline)
				swaps.GET("/:id/share", h.Swap.Share)
				swaps.GET("/:id/calendar", h.Swap.Calendar)
			}
		}
	}

	return r
}

func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if db != nil {
			checks["database"] = "ok"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				checks["database"] = "unavailable"
				healthy = false
			}
		}

		// Redis 不可用时服务降级运行，不影响整体健康状态
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				checks["redis"] = "degraded"
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}
