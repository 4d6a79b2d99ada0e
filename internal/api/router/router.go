package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftrota/config"
	"shiftrota/internal/api/handler"
	"shiftrota/internal/api/middleware"
	"shiftrota/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// 变更类接口单独限流，查询接口不限
	mutationLimit := middleware.RateLimit(rdb, cfg.Rota.MutationRateLimit, cfg.Rota.MutationRateWindow)

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 解析模块：任意时刻的当值班制 / 当值班组
		resolution := v1.Group("/resolution")
		{
			resolution.GET("/active-pattern", h.Resolution.GetActivePattern)
			resolution.GET("/active-team", h.Resolution.GetActiveTeam)
			resolution.GET("/day-summary", h.Resolution.GetDaySummary)
		}

		// 班制模板模块（模板为上游系统同步数据，此处只读）
		patterns := v1.Group("/patterns")
		{
			patterns.GET("", h.Pattern.ListPatterns)
			patterns.GET("/:id", h.Pattern.GetPattern)
			patterns.GET("/:id/spans", h.Pattern.ListSpans)
		}

		// 班组模块
		teams := v1.Group("/teams")
		{
			teams.GET("", h.Team.ListTeams)
			teams.GET("/:id", h.Team.GetTeam)
		}

		// 生产单元模块
		units := v1.Group("/units")
		{
			units.GET("", h.Unit.ListUnits)
			units.GET("/:id", h.Unit.GetUnit)
			units.POST("", mutationLimit, h.Unit.CreateUnit)
			units.GET("/:id/patterns", h.Unit.ListEligiblePatterns)
			units.PATCH("/:id/active-shift", mutationLimit, h.Change.ApplyActiveShift)
			units.GET("/:id/shift-changes", h.Change.ListChanges)
		}

		// 班制切换事件模块
		shiftChanges := v1.Group("/shift-changes")
		{
			shiftChanges.PUT("/:id", mutationLimit, h.Change.UpdateChange)
			shiftChanges.DELETE("/:id", mutationLimit, h.Change.DeleteChange)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/rota", h.Export.ExportRota)
			export.GET("/ics", h.Export.ExportICS)
		}
	}

	return r
}
