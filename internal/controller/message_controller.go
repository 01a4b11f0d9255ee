package controller

import (
	"strconv"
	"tgbot_backend/internal/repository"
	"tgbot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageRepo *repository.MessageRepository
	GroupRepo   *repository.GroupRepository
}

func NewMessageController(messageRepo *repository.MessageRepository, groupRepo *repository.GroupRepository) *MessageController {
	return &MessageController{MessageRepo: messageRepo, GroupRepo: groupRepo}
}

// ListByChat 分页查询某个聊天里的消息记录
func (c *MessageController) ListByChat(ctx *gin.Context) {
	chatID, err := strconv.ParseInt(ctx.Param("chatId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid chat id")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	messages, total, err := c.MessageRepo.ListByChat(chatID, page, pageSize)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  messages,
		Total: total,
		Page:  page,
		Limit: pageSize,
	})
}

// ListGroups 机器人加入过的群组列表
func (c *MessageController) ListGroups(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	groups, err := c.GroupRepo.ListActive(limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, groups)
}
