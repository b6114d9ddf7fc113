package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/camtauxe/nmsu-cfr/config"
	"github.com/camtauxe/nmsu-cfr/internal/api/handler"
	"github.com/camtauxe/nmsu-cfr/internal/api/middleware"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/pkg/jwt"
	"github.com/camtauxe/nmsu-cfr/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限速防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 学期模块：查询开放给所有已登录角色，变更仅 admin
			semesters := authorized.Group("/semesters")
			{
				semesters.GET("", h.Semester.List)
				semesters.GET("/active", h.Semester.GetActive)
				semesters.POST("", middleware.RoleAuth(model.RoleAdmin), h.Semester.Add)
				semesters.PUT("/active", middleware.RoleAuth(model.RoleAdmin), h.Semester.SetActive)
			}

			// 经费申请提交模块（submitter）
			cfr := authorized.Group("/cfr", middleware.RoleAuth(model.RoleSubmitter))
			{
				cfr.GET("/courses", h.CFR.GetCourses)
				cfr.GET("/savings", h.CFR.GetSavings)
				cfr.GET("/revisions", h.CFR.GetRevisions)
				cfr.POST("/courses", h.CFR.SubmitCourses)
				cfr.POST("/savings", h.CFR.SubmitSavings)
			}

			// 审批模块（approver）
			approver := authorized.Group("/approver", middleware.RoleAuth(model.RoleApprover))
			{
				approver.GET("/summary", h.Approval.Summary)
				approver.POST("/courses", h.Approval.ApproveCourses)
				approver.POST("/savings", h.Approval.ApproveSavings)
				approver.POST("/commit", h.Approval.CommitFunds)
			}

			// 导出模块（approver）
			export := authorized.Group("/export", middleware.RoleAuth(model.RoleApprover))
			{
				export.GET("/summary", h.Export.ExportSummary)
			}

			// 用户管理模块（admin）
			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.ListUsernames)
				users.POST("", h.User.AddUser)
				users.PUT("/:username/password", h.User.ChangePassword)
				users.DELETE("/:username", h.User.DeleteUser)
			}
			authorized.GET("/departments", middleware.RoleAuth(model.RoleAdmin), h.User.ListDepartments)
		}
	}

	return r
}
