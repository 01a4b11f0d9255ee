package controller

import (
	"strconv"
	"tgbot_backend/internal/repository"
	"tgbot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PointsController struct {
	PointsRepo *repository.PointsRepository
}

func NewPointsController(pointsRepo *repository.PointsRepository) *PointsController {
	return &PointsController{PointsRepo: pointsRepo}
}

// GetHistory 查询指定用户最近的积分流水
func (c *PointsController) GetHistory(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := c.PointsRepo.RecentByUser(telegramID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// GetLeaderboard 积分排行榜
func (c *PointsController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	users, err := c.PointsRepo.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, users)
}
