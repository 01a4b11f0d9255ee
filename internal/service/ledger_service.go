package service

import (
	"fmt"
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/util"
	"tgbot_backend/pkg/logger"
	"tgbot_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// LedgerStore 积分账本需要的最小用户存储能力
type LedgerStore interface {
	FindByTelegramID(telegramID int64) (*model.User, error)
	IncrementPoints(telegramID int64, amount int) (int64, error)
	SaveCheckinState(telegramID int64, checkinAt time.Time, streak int) error
}

// HistoryStore 积分流水的追加能力
type HistoryStore interface {
	Append(entry *model.PointsHistory) error
}

// CheckinResult 签到成功后的展示数据
type CheckinResult struct {
	Reward  int
	Streak  int
	Balance int
}

// LedgerService 维护积分余额、流水和每日签到状态机
type LedgerService struct {
	Users   LedgerStore
	History HistoryStore
	Cfg     config.CheckinConfig
}

func NewLedgerService(users LedgerStore, history HistoryStore, cfg config.CheckinConfig) *LedgerService {
	return &LedgerService{
		Users:   users,
		History: history,
		Cfg:     cfg,
	}
}

// Award 给已存在的用户加积分并追加流水。用户不存在时不做任何事，只记一条警告，
// 用户的创建由调用方在进入账本之前完成。
//
// 余额累加是原子的；流水追加失败时余额不回滚，只记录日志，
// 因此余额与流水之和可能短暂不一致，以余额为准。
func (s *LedgerService) Award(telegramID int64, amount int, source, description string) error {
	rows, err := s.Users.IncrementPoints(telegramID, amount)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.Log.Warn("award skipped: user does not exist",
			zap.Int64("telegram_id", telegramID),
			zap.Int("amount", amount),
			zap.String("source", source))
		return nil
	}

	entry := &model.PointsHistory{
		TelegramID:  telegramID,
		Amount:      amount,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.History.Append(entry); err != nil {
		logger.Log.Error("points history append failed after increment",
			zap.Int64("telegram_id", telegramID),
			zap.Int("amount", amount),
			zap.Error(err))
	}

	monitoring.PointsAwardCounter.WithLabelValues(source).Inc()
	return nil
}

// CheckIn 每日签到。today由调用方传入，状态机只依赖这个日期，不自己取当前时间。
//
// 同一天重复签到返回 ErrAlreadyCheckedIn 且不改任何状态；
// 昨天签过则连续天数+1，否则重置为1；
// 奖励 = 基础分 + min(连续天数, 上限)。
func (s *LedgerService) CheckIn(telegramID int64, today time.Time) (*CheckinResult, error) {
	today = DateOnly(today)

	user, err := s.Users.FindByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}

	if last, ok := user.LastCheckinDate(); ok {
		if last.Equal(today) {
			return nil, util.ErrAlreadyCheckedIn
		}
	}

	streak := 1
	if last, ok := user.LastCheckinDate(); ok && last.Equal(today.AddDate(0, 0, -1)) {
		streak = user.CheckinStreak + 1
	}

	reward := s.Cfg.BasePoints + min(streak, s.Cfg.StreakCap)

	if err := s.Users.SaveCheckinState(telegramID, today, streak); err != nil {
		return nil, err
	}

	if err := s.Award(telegramID, reward, model.PointsSourceCheckin, fmt.Sprintf("连续签到第%d天", streak)); err != nil {
		return nil, err
	}

	balance := user.Points + reward
	if updated, err := s.Users.FindByTelegramID(telegramID); err == nil {
		balance = updated.Points
	}

	return &CheckinResult{
		Reward:  reward,
		Streak:  streak,
		Balance: balance,
	}, nil
}

// DateOnly 去掉时间部分，只保留日历日期
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
