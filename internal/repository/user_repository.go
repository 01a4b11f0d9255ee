package repository

import (
	"tgbot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	now := time.Now()
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	if user.LastActivity.IsZero() {
		user.LastActivity = now
	}
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByTelegramID(telegramID int64) (*model.User, error) {
	var user model.User
	err := r.DB.Where("telegram_id = ?", telegramID).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// Upsert 按Telegram ID写入用户资料，已存在时只刷新资料字段，不触碰积分和签到状态
func (r *UserRepository) Upsert(user *model.User) error {
	existing, err := r.FindByTelegramID(user.TelegramID)
	if err == gorm.ErrRecordNotFound {
		return r.Create(user)
	}
	if err != nil {
		return err
	}

	return r.DB.Model(existing).Updates(map[string]interface{}{
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"is_admin":      user.IsAdmin,
		"is_bot":        user.IsBot,
		"language_code": user.LanguageCode,
		"last_activity": time.Now(),
	}).Error
}

// IncrementPoints 原子累加积分，返回受影响的行数；0行表示用户不存在
func (r *UserRepository) IncrementPoints(telegramID int64, amount int) (int64, error) {
	result := r.DB.Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Update("points", gorm.Expr("points + ?", amount))
	return result.RowsAffected, result.Error
}

// SaveCheckinState 持久化签到日期和连续天数
func (r *UserRepository) SaveCheckinState(telegramID int64, checkinAt time.Time, streak int) error {
	return r.DB.Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"last_checkin_at": checkinAt,
			"checkin_streak":  streak,
		}).Error
}

func (r *UserRepository) UpdateLastActivity(telegramID int64) error {
	return r.DB.Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Update("last_activity", time.Now()).Error
}

func (r *UserRepository) SetBanned(telegramID int64, banned bool) error {
	return r.DB.Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Update("is_banned", banned).Error
}

func (r *UserRepository) SetMuted(telegramID int64, muted bool, until *time.Time) error {
	return r.DB.Model(&model.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]interface{}{
			"is_muted":    muted,
			"muted_until": until,
		}).Error
}

func (r *UserRepository) FindTopByPoints(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("points DESC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) List(page, pageSize int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.DB.Model(&model.User{})
	if search != "" {
		term := "%" + search + "%"
		query = query.Where("username LIKE ? OR first_name LIKE ? OR last_name LIKE ?", term, term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Count(&count).Error
	return count, err
}

func (r *UserRepository) Delete(telegramID int64) error {
	result := r.DB.Where("telegram_id = ?", telegramID).Delete(&model.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
