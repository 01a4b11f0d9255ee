package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SentMessage 发送成功后的最小回执，调度删除时只需要这两个字段
type SentMessage struct {
	ChatID    int64
	MessageID int
}

// Messenger 机器人对Telegram的全部依赖。
// 处理逻辑只面向这个接口，测试里用假实现替换。
type Messenger interface {
	Username() string
	SendMessage(chatID int64, text string) (SentMessage, error)
	ReplyMessage(chatID int64, replyTo int, text string) (SentMessage, error)
	ReplyWithKeyboard(chatID int64, replyTo int, text string, kb tgbotapi.InlineKeyboardMarkup) (SentMessage, error)
	DeleteMessage(chatID int64, messageID int) error
	RestrictMember(chatID, userID int64, until time.Time) error
	BanMember(chatID, userID int64) error
	AnswerCallback(callbackID string) error
	EditMessageText(chatID int64, messageID int, text string) error
}

// TelegramMessenger 基于官方Bot API的Messenger实现
type TelegramMessenger struct {
	api *tgbotapi.BotAPI
}

func NewTelegramMessenger(token string) (*TelegramMessenger, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramMessenger{api: api}, nil
}

func (t *TelegramMessenger) Username() string {
	return t.api.Self.UserName
}

func (t *TelegramMessenger) SendMessage(chatID int64, text string) (SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := t.api.Send(msg)
	if err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

func (t *TelegramMessenger) ReplyMessage(chatID int64, replyTo int, text string) (SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyTo
	sent, err := t.api.Send(msg)
	if err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

func (t *TelegramMessenger) ReplyWithKeyboard(chatID int64, replyTo int, text string, kb tgbotapi.InlineKeyboardMarkup) (SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyTo
	msg.ReplyMarkup = kb
	sent, err := t.api.Send(msg)
	if err != nil {
		return SentMessage{}, err
	}
	return SentMessage{ChatID: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

func (t *TelegramMessenger) AnswerCallback(callbackID string) error {
	_, err := t.api.Request(tgbotapi.NewCallback(callbackID, ""))
	return err
}

func (t *TelegramMessenger) EditMessageText(chatID int64, messageID int, text string) error {
	_, err := t.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

func (t *TelegramMessenger) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (t *TelegramMessenger) RestrictMember(chatID, userID int64, until time.Time) error {
	_, err := t.api.Request(tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate: until.Unix(),
		// 零值权限即全部禁止，等价于禁言
		Permissions: &tgbotapi.ChatPermissions{},
	})
	return err
}

func (t *TelegramMessenger) BanMember(chatID, userID int64) error {
	_, err := t.api.Request(tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
	})
	return err
}

// Updates 拉取更新的通道，timeout为长轮询秒数
func (t *TelegramMessenger) Updates(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return t.api.GetUpdatesChan(u)
}

// StopUpdates 停止长轮询
func (t *TelegramMessenger) StopUpdates() {
	t.api.StopReceivingUpdates()
}
