package bot

import (
	"sync"
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/repository"
	"tgbot_backend/internal/service"
	"tgbot_backend/pkg/logger"
	"tgbot_backend/pkg/monitoring"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// settings 运行期可热更新的那部分配置，配置文件变化时整体替换
type settings struct {
	AutoDeleteEnabled bool
	AutoDeleteDelay   time.Duration
	AdminIDs          []int64
	AdminPanelURL     string
	MuteDuration      time.Duration
	Awards            config.AwardsConfig
}

func settingsFrom(cfg *config.Config) settings {
	return settings{
		AutoDeleteEnabled: cfg.Bot.AutoDeleteEnabled,
		AutoDeleteDelay:   cfg.Bot.AutoDeleteDelay(),
		AdminIDs:          cfg.Bot.AdminIDs,
		AdminPanelURL:     cfg.Bot.AdminPanelURL,
		MuteDuration:      time.Duration(cfg.Bot.MuteDurationMinute) * time.Minute,
		Awards:            cfg.Awards,
	}
}

// DeleteScheduler 延迟删除消息的调度入口，*Scheduler是默认实现
type DeleteScheduler interface {
	Schedule(chatID int64, messageID int, delay time.Duration)
	Stop()
}

// MessageStore 机器人侧用到的消息存取能力
type MessageStore interface {
	Create(msg *model.Message) error
	CountByUser(telegramID int64) (int64, error)
	FindByChatAndRange(chatID int64, from, to time.Time) ([]model.Message, error)
}

// Bot 消息处理的核心，持有全部下游依赖
type Bot struct {
	msgr       Messenger
	scheduler  DeleteScheduler
	ledger     *service.LedgerService
	stats      *service.StatsService
	translator Translator
	publisher  WebPublisher

	userRepo    *repository.UserRepository
	pointsRepo  *repository.PointsRepository
	messageRepo MessageStore
	groupRepo   *repository.GroupRepository

	mu       sync.RWMutex
	settings settings

	stopOnce sync.Once
	done     chan struct{}
}

type Deps struct {
	Messenger   Messenger
	Scheduler   DeleteScheduler
	Ledger      *service.LedgerService
	Stats       *service.StatsService
	Translator  Translator
	Publisher   WebPublisher
	UserRepo    *repository.UserRepository
	PointsRepo  *repository.PointsRepository
	MessageRepo MessageStore
	GroupRepo   *repository.GroupRepository
}

func New(cfg *config.Config, deps Deps) *Bot {
	return &Bot{
		msgr:        deps.Messenger,
		scheduler:   deps.Scheduler,
		ledger:      deps.Ledger,
		stats:       deps.Stats,
		translator:  deps.Translator,
		publisher:   deps.Publisher,
		userRepo:    deps.UserRepo,
		pointsRepo:  deps.PointsRepo,
		messageRepo: deps.MessageRepo,
		groupRepo:   deps.GroupRepo,
		settings:    settingsFrom(cfg),
		done:        make(chan struct{}),
	}
}

// ApplyConfig 配置热更新入口，只替换允许运行期变化的部分
func (b *Bot) ApplyConfig(cfg *config.Config) {
	b.mu.Lock()
	b.settings = settingsFrom(cfg)
	b.mu.Unlock()
	logger.Log.Info("bot settings reloaded",
		zap.Bool("auto_delete_enabled", cfg.Bot.AutoDeleteEnabled),
		zap.Int("auto_delete_seconds", cfg.Bot.AutoDeleteSeconds))
}

func (b *Bot) snapshot() settings {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.settings
}

func (b *Bot) isAdmin(telegramID int64) bool {
	for _, id := range b.snapshot().AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Run 消费更新直到通道关闭，每条更新在独立的协程里处理
func (b *Bot) Run(updates tgbotapi.UpdatesChannel) {
	logger.Log.Info("telegram bot started", zap.String("username", b.msgr.Username()))

	var wg sync.WaitGroup
	for update := range updates {
		wg.Add(1)
		go func(u tgbotapi.Update) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Error("update handler panicked", zap.Any("panic", r))
				}
			}()
			b.handleUpdate(u)
		}(update)
	}
	wg.Wait()
	close(b.done)
}

// Stop 等待在途的更新处理完，再停掉删除调度器
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		<-b.done
		b.scheduler.Stop()
	})
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		monitoring.BotUpdateCounter.WithLabelValues("message").Inc()
		b.handleMessage(update.Message)
	case update.CallbackQuery != nil:
		monitoring.BotUpdateCounter.WithLabelValues("callback").Inc()
		b.handleCallback(update.CallbackQuery)
	default:
		monitoring.BotUpdateCounter.WithLabelValues("other").Inc()
	}
}

// reply 回复一条消息并按双删除约定调度清理：
// 机器人自己的回复只要开了自动删除就一定清理；
// 用户的原始消息只有在归属判定通过时才清理。
func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	s := b.snapshot()

	sent, err := b.msgr.ReplyMessage(msg.Chat.ID, msg.MessageID, text)
	if err != nil {
		logger.Log.Error("reply failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
		return
	}

	b.saveBotMessage(sent, text)

	if !s.AutoDeleteEnabled {
		return
	}
	b.scheduler.Schedule(sent.ChatID, sent.MessageID, s.AutoDeleteDelay)

	source := msg.Text
	if source == "" {
		source = msg.Caption
	}
	if ShouldDeleteMessage(msg.Chat.Type, source, b.msgr.Username(), s.AutoDeleteEnabled) {
		b.scheduler.Schedule(msg.Chat.ID, msg.MessageID, s.AutoDeleteDelay)
	}
}

// upsertUser 把消息发送者同步进用户表，只动资料字段
func (b *Bot) upsertUser(from *tgbotapi.User) {
	if from == nil {
		return
	}
	u := &model.User{
		TelegramID:   from.ID,
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		IsAdmin:      b.isAdmin(from.ID),
		IsBot:        from.IsBot,
		LanguageCode: from.LanguageCode,
	}
	if err := b.userRepo.Upsert(u); err != nil {
		logger.Log.Error("user upsert failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}
}

func (b *Bot) saveMessage(msg *tgbotapi.Message, kind, text, fileID string) {
	var telegramID int64
	if msg.From != nil {
		telegramID = msg.From.ID
	}
	record := &model.Message{
		MessageID:  msg.MessageID,
		ChatID:     msg.Chat.ID,
		TelegramID: telegramID,
		Kind:       kind,
		Text:       text,
		FileID:     fileID,
		CreatedAt:  time.Now(),
	}
	if err := b.messageRepo.Create(record); err != nil {
		logger.Log.Error("save message failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) saveBotMessage(sent SentMessage, text string) {
	record := &model.Message{
		MessageID: sent.MessageID,
		ChatID:    sent.ChatID,
		Kind:      model.MessageKindText,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := b.messageRepo.Create(record); err != nil {
		logger.Log.Error("save message failed", zap.Int64("chat_id", sent.ChatID), zap.Error(err))
	}
}

func (b *Bot) touchActivity(from *tgbotapi.User) {
	if from == nil {
		return
	}
	if err := b.userRepo.UpdateLastActivity(from.ID); err != nil {
		logger.Log.Warn("update last activity failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}
}
