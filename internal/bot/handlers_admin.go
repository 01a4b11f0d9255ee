package bot

import (
	"errors"
	"fmt"
	"strings"
	"tgbot_backend/pkg/logger"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg, "你没有权限执行此命令")
		return
	}

	stats, err := b.stats.Collect()
	if err != nil {
		logger.Log.Error("stats collect failed", zap.Error(err))
		b.reply(msg, "统计查询失败，请稍后再试")
		return
	}

	var sb strings.Builder
	sb.WriteString("📈 Bot统计信息\n\n")
	sb.WriteString(fmt.Sprintf("👥 用户总数: %d\n", stats.UserCount))
	sb.WriteString(fmt.Sprintf("💬 消息总数: %d\n", stats.MessageCount))
	sb.WriteString(fmt.Sprintf("⌨️ 命令总数: %d\n", stats.CommandCount))
	sb.WriteString(fmt.Sprintf("👪 群组总数: %d\n", stats.GroupCount))
	if len(stats.ActiveGroups) > 0 {
		sb.WriteString("\n活跃群组:\n")
		for _, g := range stats.ActiveGroups {
			sb.WriteString(fmt.Sprintf("· %s\n", g.Title))
		}
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handleAdmin(msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg, "抱歉，只有管理员才能使用此命令。")
		return
	}

	s := b.snapshot()
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("网页管理后台", s.AdminPanelURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("用户管理", "admin_users"),
			tgbotapi.NewInlineKeyboardButtonData("消息管理", "admin_messages"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("设置", "admin_settings"),
		),
	)

	sent, err := b.msgr.ReplyWithKeyboard(msg.Chat.ID, msg.MessageID, "管理员控制面板：", kb)
	if err != nil {
		logger.Log.Error("reply failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		return
	}
	b.saveBotMessage(sent, "管理员控制面板：")
}

func (b *Bot) handleBan(msg *tgbotapi.Message, args []string) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg, "你没有权限执行此命令")
		return
	}
	if len(args) < 1 {
		b.reply(msg, "请提供要踢出的用户名，例如：/ban @username")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	target, err := b.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.reply(msg, fmt.Sprintf("未找到用户 @%s", username))
		return
	}
	if err != nil {
		logger.Log.Error("find user failed", zap.String("username", username), zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}

	if err := b.msgr.BanMember(msg.Chat.ID, target.TelegramID); err != nil {
		logger.Log.Error("ban member failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("telegram_id", target.TelegramID),
			zap.Error(err))
		b.reply(msg, "操作失败，请检查机器人权限")
		return
	}

	if err := b.userRepo.SetBanned(target.TelegramID, true); err != nil {
		logger.Log.Error("mark banned failed", zap.Int64("telegram_id", target.TelegramID), zap.Error(err))
	}

	b.reply(msg, fmt.Sprintf("已成功将 @%s 踢出群组", username))
}

func (b *Bot) handleMute(msg *tgbotapi.Message, args []string) {
	if !b.isAdmin(msg.From.ID) {
		b.reply(msg, "你没有权限执行此命令")
		return
	}
	if len(args) < 1 {
		b.reply(msg, "请提供要禁言的用户名，例如：/jy @username")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	target, err := b.userRepo.FindByUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.reply(msg, fmt.Sprintf("未找到用户 @%s", username))
		return
	}
	if err != nil {
		logger.Log.Error("find user failed", zap.String("username", username), zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}

	duration := b.snapshot().MuteDuration
	until := time.Now().Add(duration)

	if err := b.msgr.RestrictMember(msg.Chat.ID, target.TelegramID, until); err != nil {
		logger.Log.Error("restrict member failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("telegram_id", target.TelegramID),
			zap.Error(err))
		b.reply(msg, "操作失败，请检查机器人权限")
		return
	}

	if err := b.userRepo.SetMuted(target.TelegramID, true, &until); err != nil {
		logger.Log.Error("mark muted failed", zap.Int64("telegram_id", target.TelegramID), zap.Error(err))
	}

	b.reply(msg, fmt.Sprintf("已成功禁言 @%s %d分钟", username, int(duration.Minutes())))
}
