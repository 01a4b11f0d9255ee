package controller

import (
	"errors"
	"strconv"
	"tgbot_backend/internal/service"
	"tgbot_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers 分页查询用户，支持按用户名模糊搜索
func (c *UserController) ListUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	search := ctx.Query("search")

	users, total, err := c.UserService.GetUsers(page, pageSize, search)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  users,
		Total: total,
		Page:  page,
		Limit: pageSize,
	})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	user, err := c.UserService.GetUser(telegramID)
	if errors.Is(err, util.ErrUserNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

func (c *UserController) DeleteUser(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	if err := c.UserService.DeleteUser(telegramID); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type BanRequest struct {
	Banned bool `json:"banned"`
}

// SetBanned 标记或解除封禁，只改数据库状态，群内踢人走机器人命令
func (c *UserController) SetBanned(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	var req BanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetBanned(telegramID, req.Banned); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type MuteRequest struct {
	Muted   bool `json:"muted"`
	Minutes int  `json:"minutes"`
}

// SetMuted 标记或解除禁言状态
func (c *UserController) SetMuted(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	var req MuteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var until *time.Time
	if req.Muted {
		minutes := req.Minutes
		if minutes <= 0 {
			minutes = 60
		}
		t := time.Now().Add(time.Duration(minutes) * time.Minute)
		until = &t
	}

	if err := c.UserService.SetMuted(telegramID, req.Muted, until); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type AdjustPointsRequest struct {
	Amount      int    `json:"amount" binding:"required"`
	Description string `json:"description"`
}

// AdjustPoints 手工调整用户积分，amount允许为负
func (c *UserController) AdjustPoints(ctx *gin.Context) {
	telegramID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid telegram id")
		return
	}

	var req AdjustPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.AdjustPoints(telegramID, req.Amount, req.Description); err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
