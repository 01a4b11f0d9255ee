package repository

import (
	"tgbot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

func (r *MessageRepository) ListByChat(chatID int64, page, pageSize int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	query := r.DB.Model(&model.Message{}).Where("chat_id = ?", chatID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&messages).Error
	return messages, total, err
}

func (r *MessageRepository) FindByChatAndRange(chatID int64, from, to time.Time) ([]model.Message, error) {
	var messages []model.Message
	err := r.DB.Where("chat_id = ? AND created_at >= ? AND created_at < ?", chatID, from, to).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) CountByUser(telegramID int64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).Where("telegram_id = ?", telegramID).Count(&count).Error
	return count, err
}

func (r *MessageRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).Count(&count).Error
	return count, err
}

// CountCommands 统计命令消息数量
func (r *MessageRepository) CountCommands() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).Where("text LIKE ?", "/%").Count(&count).Error
	return count, err
}
