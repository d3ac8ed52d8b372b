package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dashboard-engagement/server/config"
	"dashboard-engagement/server/internal/api/handler"
	"dashboard-engagement/server/internal/api/middleware"
	"dashboard-engagement/server/pkg/jwt"
	"dashboard-engagement/server/pkg/redis"
)

// Setup builds the Gin engine. rdb may be nil when Redis is not configured.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxUploadBytes))

	// ── health / metrics ──
	r.GET("/health", healthCheck(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	auth := middleware.APIAuth(cfg.Auth.InternalAPISecret, jwtMgr)

	// ── import ──
	imports := r.Group("/api/import")
	imports.Use(auth, middleware.RateLimit(limiter, cfg.RateLimit.ImportPerMinute, time.Minute))
	{
		imports.POST("/event-attendance", h.Import.ImportEventAttendance)
	}

	// ── analytics ──
	analytics := r.Group("/analytics")
	analytics.Use(auth)
	{
		analytics.GET("", h.Analytics.Dashboard)
		analytics.GET("/retention", h.Analytics.Retention)
		analytics.GET("/overview", h.Analytics.Overview)
		analytics.GET("/mission", h.Analytics.Mission)
	}

	api := r.Group("/api")
	api.Use(auth)
	{
		events := api.Group("/events")
		{
			events.GET("", h.Event.List)
			events.GET("/:id", h.Event.Get)
		}

		export := api.Group("/export")
		{
			export.GET("/analytics", h.Export.ExportAnalytics)
			export.GET("/events/:id/attendance", h.Export.ExportEventAttendance)
		}

		api.GET("/calendar/events.ics", h.Calendar.EventsFeed)
	}

	return r
}

func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "ok"}

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		}

		switch {
		case rdb == nil:
			body["redis"] = "disabled"
		case rdb.Healthy(ctx):
			body["redis"] = "ok"
		default:
			body["redis"] = "unreachable"
		}

		c.JSON(status, body)
	}
}
