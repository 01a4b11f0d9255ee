package controller

import (
	"tgbot_backend/internal/service"
	"tgbot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// GetStats 后台首页的汇总统计
func (c *StatsController) GetStats(ctx *gin.Context) {
	stats, err := c.StatsService.Collect()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
