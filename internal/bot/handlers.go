package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/util"
	"tgbot_backend/pkg/logger"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	switch {
	case len(msg.NewChatMembers) > 0:
		b.handleNewChatMembers(msg)
		return
	case msg.LeftChatMember != nil:
		b.handleLeftChatMember(msg)
		return
	}

	b.upsertUser(msg.From)

	if msg.IsCommand() {
		// 群里发给其他机器人的命令直接忽略
		if addressedToOther(msg.Text, b.msgr.Username()) {
			return
		}
		b.saveMessage(msg, model.MessageKindText, msg.Text, "")
		b.dispatchCommand(msg)
		return
	}

	switch {
	case msg.Text != "":
		b.handleText(msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(msg)
	case msg.Document != nil:
		b.handleDocument(msg)
	}
}

// addressedToOther 判断命令词是否带了指向其他机器人的@后缀
func addressedToOther(text, username string) bool {
	token := text
	if idx := strings.IndexAny(token, " \t\n"); idx >= 0 {
		token = token[:idx]
	}
	at := strings.Index(token, "@")
	if at < 0 {
		return false
	}
	return strings.TrimSpace(token[at+1:]) != username
}

func (b *Bot) dispatchCommand(msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "help":
		b.handleHelp(msg)
	case "qd":
		b.handleCheckin(msg)
	case "zt":
		b.handleUserInfo(msg)
	case "fy":
		b.handleTranslate(msg, args)
	case "jf":
		b.handlePoints(msg, args)
	case "jfxx":
		b.handlePointsDetail(msg, args)
	case "web":
		b.handleWebpage(msg, args)
	case "tu":
		b.handleHeatmap(msg, args)
	case "stats":
		b.handleStats(msg)
	case "admin":
		b.handleAdmin(msg)
	case "ban":
		b.handleBan(msg, args)
	case "jy":
		b.handleMute(msg, args)
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	s := b.snapshot()

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("帮助", "help"),
			tgbotapi.NewInlineKeyboardButtonData("统计", "stats"),
		),
	)

	text := fmt.Sprintf("你好，%s！欢迎使用本机器人。\n你可以使用 /help 命令获取帮助。", msg.From.FirstName)
	sent, err := b.msgr.ReplyWithKeyboard(msg.Chat.ID, msg.MessageID, text, kb)
	if err != nil {
		logger.Log.Error("reply failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		return
	}
	b.saveBotMessage(sent, text)

	if s.AutoDeleteEnabled {
		b.scheduler.Schedule(sent.ChatID, sent.MessageID, s.AutoDeleteDelay)
		if ShouldDeleteMessage(msg.Chat.Type, msg.Text, b.msgr.Username(), s.AutoDeleteEnabled) {
			b.scheduler.Schedule(msg.Chat.ID, msg.MessageID, s.AutoDeleteDelay)
		}
	}
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	chatTitle := msg.Chat.Title
	if chatTitle == "" {
		chatTitle = "私聊"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📱 %s - 机器人指令帮助\n\n", chatTitle))
	sb.WriteString("🔹 通用指令\n")
	sb.WriteString("/start - 开始使用机器人\n")
	sb.WriteString("/help - 显示帮助信息\n")
	sb.WriteString("/web - 网页转Telegraph链接，格式：/web [URL]\n")
	sb.WriteString("/qd - 每日签到，获取积分\n")
	sb.WriteString("/zt - 查看个人信息\n")
	sb.WriteString("/fy - 翻译功能，格式：/fy [语言代码] [文本]\n")
	sb.WriteString("      例如：/fy en 你好，/fy zh hello\n")
	sb.WriteString("/tu - 聊天热力图，参数：d(日)、m(月)、y(年)\n")
	sb.WriteString("/jf - 积分排行榜，或查看指定用户积分\n")
	sb.WriteString("/jfxx - 查看积分详情\n")

	if msg.From != nil && b.isAdmin(msg.From.ID) {
		sb.WriteString("\n🔸 管理员指令\n")
		sb.WriteString("/admin - 访问管理员功能\n")
		sb.WriteString("/ban - 踢出用户，格式：/ban @用户名\n")
		sb.WriteString("/jy - 禁言用户，格式：/jy @用户名\n")
		sb.WriteString("/stats - 显示统计信息\n")
	}

	b.reply(msg, sb.String())
}

func (b *Bot) handleCheckin(msg *tgbotapi.Message) {
	result, err := b.ledger.CheckIn(msg.From.ID, time.Now())
	if errors.Is(err, util.ErrAlreadyCheckedIn) {
		b.reply(msg, fmt.Sprintf("%s，你今天已经签到过了！", msg.From.FirstName))
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.reply(msg, "未找到你的用户数据，请先发送 /start")
		return
	}
	if err != nil {
		logger.Log.Error("checkin failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "签到失败，请稍后再试")
		return
	}

	b.reply(msg, fmt.Sprintf(
		"✅ %s，签到成功！\n➕ 获得%d积分\n📊 当前积分：%d\n🔄 已连续签到%d天",
		msg.From.FirstName, result.Reward, result.Balance, result.Streak))
}

func (b *Bot) handleUserInfo(msg *tgbotapi.Message) {
	user, err := b.userRepo.FindByTelegramID(msg.From.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.reply(msg, "未找到你的用户数据")
		return
	}
	if err != nil {
		logger.Log.Error("find user failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}

	msgCount, err := b.messageRepo.CountByUser(msg.From.ID)
	if err != nil {
		logger.Log.Warn("count messages failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
	}

	b.reply(msg, fmt.Sprintf(
		"个人信息\n"+
			"👤 用户: %s %s\n"+
			"🆔 ID: %d\n"+
			"💰 积分: %d\n"+
			"📊 发送消息: %d条\n"+
			"📅 加入时间: %s\n"+
			"🔄 连续签到: %d天\n"+
			"⏱ 上次活动: %s",
		user.FirstName, user.LastName, user.TelegramID, user.Points, msgCount,
		user.JoinedAt.Format("2006-01-02"), user.CheckinStreak,
		user.LastActivity.Format("2006-01-02 15:04:05")))
}

func (b *Bot) handleTranslate(msg *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.reply(msg, "翻译格式: /fy [目标语言] [文本]\n例如:\n/fy en 你好\n/fy zh hello")
		return
	}

	lang := NormalizeLang(args[0])
	if lang == "" {
		b.reply(msg, fmt.Sprintf("不支持的目标语言: %s", args[0]))
		return
	}
	text := strings.Join(args[1:], " ")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	translated, err := b.translator.Translate(ctx, lang, text)
	if err != nil {
		logger.Log.Error("translate failed", zap.String("lang", lang), zap.Error(err))
		b.reply(msg, "翻译失败，请稍后再试")
		return
	}

	b.reply(msg, fmt.Sprintf("原文: %s\n译文(%s): %s", text, LangNames[lang], translated))

	if err := b.ledger.Award(msg.From.ID, b.snapshot().Awards.Translate,
		model.PointsSourceTranslate, fmt.Sprintf("使用翻译功能: %s", lang)); err != nil {
		logger.Log.Error("award failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
	}
}

func (b *Bot) handlePoints(msg *tgbotapi.Message, args []string) {
	if len(args) > 0 {
		username := strings.TrimPrefix(args[0], "@")
		user, err := b.userRepo.FindByUsername(username)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.reply(msg, fmt.Sprintf("未找到用户 @%s", username))
			return
		}
		if err != nil {
			logger.Log.Error("find user failed", zap.String("username", username), zap.Error(err))
			b.reply(msg, "查询失败，请稍后再试")
			return
		}
		b.reply(msg, fmt.Sprintf("用户 @%s 的积分: %d分", username, user.Points))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	top, err := b.pointsRepo.Leaderboard(ctx, 10)
	if err != nil {
		logger.Log.Error("leaderboard query failed", zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}
	if len(top) == 0 {
		b.reply(msg, "暂无积分数据")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	sb.WriteString("📊 积分排行榜 TOP 10\n\n")
	for i, u := range top {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := u.Username
		if name == "" {
			name = u.FirstName
		}
		sb.WriteString(fmt.Sprintf("%s @%s - %d分\n", rank, name, u.Points))
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handlePointsDetail(msg *tgbotapi.Message, args []string) {
	targetID := msg.From.ID
	if len(args) > 0 {
		if !b.isAdmin(msg.From.ID) {
			b.reply(msg, "只有管理员才能查看其他用户的积分详情")
			return
		}
		username := strings.TrimPrefix(args[0], "@")
		user, err := b.userRepo.FindByUsername(username)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.reply(msg, fmt.Sprintf("未找到用户 @%s", username))
			return
		}
		if err != nil {
			logger.Log.Error("find user failed", zap.String("username", username), zap.Error(err))
			b.reply(msg, "查询失败，请稍后再试")
			return
		}
		targetID = user.TelegramID
	}

	user, err := b.userRepo.FindByTelegramID(targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.reply(msg, "未找到用户数据")
		return
	}
	if err != nil {
		logger.Log.Error("find user failed", zap.Int64("telegram_id", targetID), zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}

	history, err := b.pointsRepo.RecentByUser(targetID, 10)
	if err != nil {
		logger.Log.Error("points history query failed", zap.Int64("telegram_id", targetID), zap.Error(err))
		b.reply(msg, "查询失败，请稍后再试")
		return
	}

	name := user.Username
	if name == "" {
		name = user.FirstName
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s 的积分详情\n\n💰 当前积分: %d分\n\n📝 最近积分记录\n", name, user.Points))
	if len(history) == 0 {
		sb.WriteString("暂无积分记录\n")
	}
	for i, record := range history {
		sign := ""
		if record.Amount > 0 {
			sign = "+"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s%d分 [%s] %s\n",
			i+1, record.CreatedAt.Format("2006-01-02"), sign, record.Amount,
			record.Source, record.Description))
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handleWebpage(msg *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.reply(msg, "请提供一个网页链接，例如：\n/web https://example.com")
		return
	}
	pageURL := args[0]
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		b.reply(msg, "请提供有效的URL链接，必须以http://或https://开头")
		return
	}

	author := msg.From.UserName
	if author == "" {
		author = msg.From.FirstName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	link, err := b.publisher.Publish(ctx, pageURL, author)
	if err != nil {
		logger.Log.Error("telegraph publish failed", zap.String("url", pageURL), zap.Error(err))
		b.reply(msg, "转换失败，请稍后再试")
		return
	}

	b.reply(msg, fmt.Sprintf("网页已转换为Telegraph链接:\n%s", link))

	if err := b.ledger.Award(msg.From.ID, b.snapshot().Awards.Webpage,
		model.PointsSourceWebpage, fmt.Sprintf("使用网页转Telegraph功能: %s", pageURL)); err != nil {
		logger.Log.Error("award failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
	}
}

func (b *Bot) handleHeatmap(msg *tgbotapi.Message, args []string) {
	if len(args) < 1 {
		b.reply(msg, "请提供热力图类型，例如：\n/tu d - 当日聊天热力图\n/tu m - 当月聊天热力图\n/tu y - 年度聊天热力图")
		return
	}

	mode := strings.ToLower(args[0])
	if mode != HeatmapDay && mode != HeatmapMonth && mode != HeatmapYear {
		b.reply(msg, "不支持的热力图类型，请使用：\nd - 当日热力图\nm - 当月热力图\ny - 年度热力图")
		return
	}

	now := time.Now()
	from, to := HeatmapRange(mode, now)
	messages, err := b.messageRepo.FindByChatAndRange(msg.Chat.ID, from, to)
	if err != nil {
		logger.Log.Error("heatmap query failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		b.reply(msg, "生成热力图失败，请稍后再试")
		return
	}

	b.reply(msg, RenderHeatmap(mode, messages, now))

	if err := b.ledger.Award(msg.From.ID, b.snapshot().Awards.Heatmap,
		model.PointsSourceHeatmap, fmt.Sprintf("生成%s类型热力图", mode)); err != nil {
		logger.Log.Error("award failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
	}
}

func (b *Bot) handleText(msg *tgbotapi.Message) {
	b.touchActivity(msg.From)
	b.saveMessage(msg, model.MessageKindText, msg.Text, "")

	mentioned := b.msgr.Username() != "" && strings.Contains(msg.Text, "@"+b.msgr.Username())
	if msg.Chat.Type == ChatPrivate || mentioned {
		b.reply(msg, fmt.Sprintf("收到你的消息: %s", msg.Text))
	}
}

func (b *Bot) handlePhoto(msg *tgbotapi.Message) {
	b.touchActivity(msg.From)

	// 最后一个是最大尺寸
	photo := msg.Photo[len(msg.Photo)-1]
	b.saveMessage(msg, model.MessageKindPhoto, msg.Caption, photo.FileID)

	mentioned := b.msgr.Username() != "" && strings.Contains(msg.Caption, "@"+b.msgr.Username())
	if msg.Chat.Type == ChatPrivate || mentioned {
		b.reply(msg, "收到你的图片")
	}
}

func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	b.touchActivity(msg.From)
	b.saveMessage(msg, model.MessageKindDocument, msg.Document.FileName, msg.Document.FileID)

	mentioned := b.msgr.Username() != "" && strings.Contains(msg.Caption, "@"+b.msgr.Username())
	if msg.Chat.Type == ChatPrivate || mentioned {
		b.reply(msg, fmt.Sprintf("收到你的文档: %s", msg.Document.FileName))
	}
}

func (b *Bot) handleNewChatMembers(msg *tgbotapi.Message) {
	s := b.snapshot()

	for i := range msg.NewChatMembers {
		member := &msg.NewChatMembers[i]

		if member.UserName == b.msgr.Username() && member.IsBot {
			// 本机器人被拉进群
			group := &model.Group{
				ChatID:   msg.Chat.ID,
				Title:    msg.Chat.Title,
				IsActive: true,
			}
			if err := b.groupRepo.Upsert(group); err != nil {
				logger.Log.Error("group upsert failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
			}
			if _, err := b.msgr.SendMessage(msg.Chat.ID, "👋 大家好！我是群管理机器人。\n输入 /help 查看可用命令。"); err != nil {
				logger.Log.Error("send failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
			}
			logger.Log.Info("bot joined group",
				zap.Int64("chat_id", msg.Chat.ID), zap.String("title", msg.Chat.Title))
			continue
		}

		if member.IsBot {
			logger.Log.Info("another bot joined group",
				zap.String("username", member.UserName), zap.Int64("chat_id", msg.Chat.ID))
			continue
		}

		b.upsertUser(member)

		welcome := fmt.Sprintf("👋 欢迎 %s 加入 %s！\n请查看群组规则，并友好交流。", member.FirstName, msg.Chat.Title)
		sent, err := b.msgr.SendMessage(msg.Chat.ID, welcome)
		if err != nil {
			logger.Log.Error("send failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
			continue
		}
		b.saveBotMessage(sent, welcome)
		if s.AutoDeleteEnabled {
			b.scheduler.Schedule(sent.ChatID, sent.MessageID, s.AutoDeleteDelay)
		}
	}
}

func (b *Bot) handleLeftChatMember(msg *tgbotapi.Message) {
	left := msg.LeftChatMember

	if left.UserName == b.msgr.Username() && left.IsBot {
		if err := b.groupRepo.Deactivate(msg.Chat.ID); err != nil {
			logger.Log.Error("group deactivate failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		}
		logger.Log.Info("bot removed from group",
			zap.Int64("chat_id", msg.Chat.ID), zap.String("title", msg.Chat.Title))
		return
	}

	logger.Log.Info("member left group",
		zap.Int64("telegram_id", left.ID), zap.Int64("chat_id", msg.Chat.ID))
}

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	if err := b.msgr.AnswerCallback(query.ID); err != nil {
		logger.Log.Warn("answer callback failed", zap.Error(err))
	}
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	switch {
	case query.Data == "help":
		b.editOrLog(chatID, messageID, "输入 /help 查看完整的指令列表")
	case query.Data == "stats":
		b.editOrLog(chatID, messageID, "输入 /stats 查看统计信息")
	case strings.HasPrefix(query.Data, "admin_"):
		if !b.isAdmin(query.From.ID) {
			b.editOrLog(chatID, messageID, "抱歉，只有管理员才能执行此操作。")
			return
		}
		switch query.Data {
		case "admin_users":
			b.editOrLog(chatID, messageID, "请在网页管理后台中管理用户")
		case "admin_messages":
			b.editOrLog(chatID, messageID, "请在网页管理后台中管理消息")
		case "admin_settings":
			b.editOrLog(chatID, messageID, "请在网页管理后台中修改设置")
		}
	}
}

func (b *Bot) editOrLog(chatID int64, messageID int, text string) {
	if err := b.msgr.EditMessageText(chatID, messageID, text); err != nil {
		logger.Log.Warn("edit message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
