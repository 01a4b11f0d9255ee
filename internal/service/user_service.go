package service

import (
	"errors"
	"tgbot_backend/internal/model"
	"tgbot_backend/internal/repository"
	"tgbot_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

// UserService 后台的用户管理逻辑
type UserService struct {
	UserRepo    *repository.UserRepository
	MessageRepo *repository.MessageRepository
	Ledger      *LedgerService
}

func NewUserService(userRepo *repository.UserRepository, messageRepo *repository.MessageRepository, ledger *LedgerService) *UserService {
	return &UserService{
		UserRepo:    userRepo,
		MessageRepo: messageRepo,
		Ledger:      ledger,
	}
}

func (s *UserService) GetUsers(page, pageSize int, search string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, pageSize, search)
}

func (s *UserService) GetUser(telegramID int64) (*model.User, error) {
	user, err := s.UserRepo.FindByTelegramID(telegramID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) DeleteUser(telegramID int64) error {
	err := s.UserRepo.Delete(telegramID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}

// AdjustPoints 后台手工调整积分，允许负数。目标用户必须已存在。
func (s *UserService) AdjustPoints(telegramID int64, amount int, description string) error {
	if _, err := s.GetUser(telegramID); err != nil {
		return err
	}
	return s.Ledger.Award(telegramID, amount, model.PointsSourceAdmin, description)
}

func (s *UserService) SetBanned(telegramID int64, banned bool) error {
	if _, err := s.GetUser(telegramID); err != nil {
		return err
	}
	return s.UserRepo.SetBanned(telegramID, banned)
}

// SetMuted 只改数据库里的禁言标记，群内的实际禁言走机器人命令
func (s *UserService) SetMuted(telegramID int64, muted bool, until *time.Time) error {
	if _, err := s.GetUser(telegramID); err != nil {
		return err
	}
	if !muted {
		until = nil
	}
	return s.UserRepo.SetMuted(telegramID, muted, until)
}
