package controller

import (
	"tgbot_backend/internal/bot"
	"tgbot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BotController struct {
	Messenger bot.Messenger
}

func NewBotController(messenger bot.Messenger) *BotController {
	return &BotController{Messenger: messenger}
}

type SendMessageRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// SendMessage 从后台以机器人身份发送一条消息
func (c *BotController) SendMessage(ctx *gin.Context) {
	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sent, err := c.Messenger.SendMessage(req.ChatID, req.Text)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message_id": sent.MessageID})
}
