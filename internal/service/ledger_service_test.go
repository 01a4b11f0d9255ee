package service

import (
	"errors"
	"testing"
	"tgbot_backend/internal/config"
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/util"
	"tgbot_backend/pkg/logger"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type fakeUserStore struct {
	users map[int64]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*model.User)}
	for _, u := range users {
		s.users[u.TelegramID] = u
	}
	return s
}

func (s *fakeUserStore) FindByTelegramID(telegramID int64) (*model.User, error) {
	u, ok := s.users[telegramID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) IncrementPoints(telegramID int64, amount int) (int64, error) {
	u, ok := s.users[telegramID]
	if !ok {
		return 0, nil
	}
	u.Points += amount
	return 1, nil
}

func (s *fakeUserStore) SaveCheckinState(telegramID int64, checkinAt time.Time, streak int) error {
	u, ok := s.users[telegramID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	at := checkinAt
	u.LastCheckinAt = &at
	u.CheckinStreak = streak
	return nil
}

type fakeHistoryStore struct {
	entries []*model.PointsHistory
	err     error
}

func (s *fakeHistoryStore) Append(entry *model.PointsHistory) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func testCheckinConfig() config.CheckinConfig {
	return config.CheckinConfig{BasePoints: 5, StreakCap: 30}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAwardIncrementsAndAppendsHistory(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1, Points: 10})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	require.NoError(t, svc.Award(1, 3, model.PointsSourceTranslate, "翻译"))
	require.NoError(t, svc.Award(1, -2, model.PointsSourceAdmin, "扣分"))

	assert.Equal(t, 11, users.users[1].Points)
	require.Len(t, history.entries, 2)
	assert.Equal(t, 3, history.entries[0].Amount)
	assert.Equal(t, -2, history.entries[1].Amount)
	assert.Equal(t, model.PointsSourceAdmin, history.entries[1].Source)
}

func TestAwardUnknownUserIsNoop(t *testing.T) {
	users := newFakeUserStore()
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	require.NoError(t, svc.Award(999, 5, model.PointsSourceCheckin, "签到"))
	assert.Empty(t, history.entries)
}

func TestAwardHistoryFailureKeepsBalance(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1, Points: 0})
	history := &fakeHistoryStore{err: errors.New("insert failed")}
	svc := NewLedgerService(users, history, testCheckinConfig())

	// 余额为准，流水失败不回滚也不报错
	require.NoError(t, svc.Award(1, 4, model.PointsSourceWebpage, "网页"))
	assert.Equal(t, 4, users.users[1].Points)
}

func TestCheckInFirstTime(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	result, err := svc.CheckIn(1, date(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 6, result.Reward)
	assert.Equal(t, 6, result.Balance)
	require.Len(t, history.entries, 1)
	assert.Equal(t, model.PointsSourceCheckin, history.entries[0].Source)
}

func TestCheckInSameDayRejected(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	_, err := svc.CheckIn(1, date(2024, 1, 1))
	require.NoError(t, err)

	before := *users.users[1]
	_, err = svc.CheckIn(1, date(2024, 1, 1).Add(18*time.Hour))
	require.ErrorIs(t, err, util.ErrAlreadyCheckedIn)

	// 重复签到不改任何状态
	assert.Equal(t, before.Points, users.users[1].Points)
	assert.Equal(t, before.CheckinStreak, users.users[1].CheckinStreak)
	assert.Len(t, history.entries, 1)
}

func TestCheckInConsecutiveDays(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	result, err := svc.CheckIn(1, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 6, result.Reward)
	assert.Equal(t, 6, result.Balance)

	result, err = svc.CheckIn(1, date(2024, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
	assert.Equal(t, 7, result.Reward)
	assert.Equal(t, 13, result.Balance)

	// 断签后连续天数重置
	result, err = svc.CheckIn(1, date(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 6, result.Reward)
	assert.Equal(t, 19, result.Balance)
}

func TestCheckInStreakCap(t *testing.T) {
	last := date(2024, 3, 9)
	users := newFakeUserStore(&model.User{
		TelegramID:    1,
		CheckinStreak: 40,
		LastCheckinAt: &last,
	})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	result, err := svc.CheckIn(1, date(2024, 3, 10))
	require.NoError(t, err)

	assert.Equal(t, 41, result.Streak)
	// 奖励封顶，连续天数继续涨
	assert.Equal(t, 35, result.Reward)
}

func TestCheckInUnknownUser(t *testing.T) {
	users := newFakeUserStore()
	svc := NewLedgerService(users, &fakeHistoryStore{}, testCheckinConfig())

	_, err := svc.CheckIn(404, date(2024, 1, 1))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCheckInIgnoresTimeOfDay(t *testing.T) {
	users := newFakeUserStore(&model.User{TelegramID: 1})
	history := &fakeHistoryStore{}
	svc := NewLedgerService(users, history, testCheckinConfig())

	_, err := svc.CheckIn(1, date(2024, 1, 1).Add(23*time.Hour+59*time.Minute))
	require.NoError(t, err)

	result, err := svc.CheckIn(1, date(2024, 1, 2).Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Streak)
}
