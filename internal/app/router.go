package app

import (
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/middleware"
	"tgbot_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的管理后台路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/stats", c.stats.GetStats)

		authGroup.GET("/users", c.user.ListUsers)
		authGroup.GET("/users/:id", c.user.GetUser)
		authGroup.DELETE("/users/:id", c.user.DeleteUser)
		authGroup.PUT("/users/:id/ban", c.user.SetBanned)
		authGroup.PUT("/users/:id/mute", c.user.SetMuted)
		authGroup.POST("/users/:id/points", c.user.AdjustPoints)
		authGroup.GET("/users/:id/points/history", c.points.GetHistory)

		authGroup.GET("/points/leaderboard", c.points.GetLeaderboard)

		authGroup.GET("/groups", c.message.ListGroups)
		authGroup.GET("/chats/:chatId/messages", c.message.ListByChat)

		authGroup.POST("/bot/send", c.bot.SendMessage)
	}
}
