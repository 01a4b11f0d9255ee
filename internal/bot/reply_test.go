package bot

import (
	"errors"
	"sync"
	"testing"
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/model"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduledDelete struct {
	chatID    int64
	messageID int
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduledDelete
}

func (f *fakeScheduler) Schedule(chatID int64, messageID int, delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scheduledDelete{chatID: chatID, messageID: messageID})
}

func (f *fakeScheduler) Stop() {}

func (f *fakeScheduler) scheduled() []scheduledDelete {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scheduledDelete(nil), f.calls...)
}

// fakeMessenger 回复固定MessageID，其余操作全部成功
type fakeMessenger struct {
	replyID  int
	replyErr error
}

func (f *fakeMessenger) Username() string { return "mybot" }

func (f *fakeMessenger) SendMessage(chatID int64, text string) (SentMessage, error) {
	if f.replyErr != nil {
		return SentMessage{}, f.replyErr
	}
	return SentMessage{ChatID: chatID, MessageID: f.replyID}, nil
}

func (f *fakeMessenger) ReplyMessage(chatID int64, replyTo int, text string) (SentMessage, error) {
	if f.replyErr != nil {
		return SentMessage{}, f.replyErr
	}
	return SentMessage{ChatID: chatID, MessageID: f.replyID}, nil
}

func (f *fakeMessenger) ReplyWithKeyboard(chatID int64, replyTo int, text string, kb tgbotapi.InlineKeyboardMarkup) (SentMessage, error) {
	return f.ReplyMessage(chatID, replyTo, text)
}

func (f *fakeMessenger) DeleteMessage(chatID int64, messageID int) error { return nil }

func (f *fakeMessenger) RestrictMember(chatID, userID int64, until time.Time) error { return nil }

func (f *fakeMessenger) BanMember(chatID, userID int64) error { return nil }

func (f *fakeMessenger) AnswerCallback(callbackID string) error { return nil }

func (f *fakeMessenger) EditMessageText(chatID int64, messageID int, text string) error { return nil }

type fakeMessageStore struct {
	mu      sync.Mutex
	created []*model.Message
}

func (f *fakeMessageStore) Create(msg *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeMessageStore) CountByUser(telegramID int64) (int64, error) { return 0, nil }

func (f *fakeMessageStore) FindByChatAndRange(chatID int64, from, to time.Time) ([]model.Message, error) {
	return nil, nil
}

func newReplyTestBot(autoDelete bool, msgr *fakeMessenger) (*Bot, *fakeScheduler, *fakeMessageStore) {
	cfg := &config.Config{}
	cfg.Bot.AutoDeleteEnabled = autoDelete
	cfg.Bot.AutoDeleteSeconds = 30

	sched := &fakeScheduler{}
	store := &fakeMessageStore{}
	b := New(cfg, Deps{
		Messenger:   msgr,
		Scheduler:   sched,
		MessageRepo: store,
	})
	return b, sched, store
}

func inbound(chatType, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 42,
		Chat:      &tgbotapi.Chat{ID: 100, Type: chatType},
		Text:      text,
	}
}

// 回复的删除调度约定：开启自动删除时机器人自己的回复一定进调度，
// 用户的原始消息只有归属判定通过才一起进调度。
func TestReplyDeleteScheduling(t *testing.T) {
	botReply := scheduledDelete{chatID: 100, messageID: 999}
	original := scheduledDelete{chatID: 100, messageID: 42}

	tests := []struct {
		name       string
		autoDelete bool
		msg        *tgbotapi.Message
		want       []scheduledDelete
	}{
		{
			name:       "私聊消息两条都删",
			autoDelete: true,
			msg:        inbound(ChatPrivate, "/qd"),
			want:       []scheduledDelete{botReply, original},
		},
		{
			name:       "群里@机器人的命令两条都删",
			autoDelete: true,
			msg:        inbound(ChatGroup, "/qd@mybot"),
			want:       []scheduledDelete{botReply, original},
		},
		{
			name:       "群里裸命令只删机器人回复",
			autoDelete: true,
			msg:        inbound(ChatGroup, "/qd"),
			want:       []scheduledDelete{botReply},
		},
		{
			name:       "超级群正文提到机器人两条都删",
			autoDelete: true,
			msg:        inbound(ChatSuperGroup, "帮我看下 @mybot"),
			want:       []scheduledDelete{botReply, original},
		},
		{
			name:       "关闭自动删除时什么都不调度",
			autoDelete: false,
			msg:        inbound(ChatPrivate, "/qd"),
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sched, store := newReplyTestBot(tt.autoDelete, &fakeMessenger{replyID: 999})

			b.reply(tt.msg, "回复内容")

			assert.Equal(t, tt.want, sched.scheduled())
			// 回复本身无论删不删都要落库
			require.Len(t, store.created, 1)
			assert.Equal(t, 999, store.created[0].MessageID)
		})
	}
}

// 带图消息没有Text，归属判定要落到Caption上
func TestReplyDeleteSchedulingUsesCaption(t *testing.T) {
	b, sched, _ := newReplyTestBot(true, &fakeMessenger{replyID: 999})

	msg := inbound(ChatGroup, "")
	msg.Caption = "看看这张图 @mybot"
	b.reply(msg, "收到")

	assert.Equal(t, []scheduledDelete{
		{chatID: 100, messageID: 999},
		{chatID: 100, messageID: 42},
	}, sched.scheduled())
}

// 发送失败时不落库也不调度删除
func TestReplySendFailureSchedulesNothing(t *testing.T) {
	b, sched, store := newReplyTestBot(true, &fakeMessenger{replyErr: errors.New("telegram: 403")})

	b.reply(inbound(ChatPrivate, "/qd"), "回复内容")

	assert.Empty(t, sched.scheduled())
	assert.Empty(t, store.created)
}
