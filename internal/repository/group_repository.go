package repository

import (
	"tgbot_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) FindByChatID(chatID int64) (*model.Group, error) {
	var group model.Group
	err := r.DB.Where("chat_id = ?", chatID).First(&group).Error
	return &group, err
}

// Upsert 按chat_id写入群组，已存在时刷新标题与成员数并重新激活
func (r *GroupRepository) Upsert(group *model.Group) error {
	existing, err := r.FindByChatID(group.ChatID)
	if err == gorm.ErrRecordNotFound {
		if group.JoinedAt.IsZero() {
			group.JoinedAt = time.Now()
		}
		group.IsActive = true
		return r.DB.Create(group).Error
	}
	if err != nil {
		return err
	}

	return r.DB.Model(existing).Updates(map[string]interface{}{
		"title":         group.Title,
		"members_count": group.MembersCount,
		"is_active":     true,
		"left_at":       nil,
	}).Error
}

// Deactivate 机器人被移出群组时标记为不活跃
func (r *GroupRepository) Deactivate(chatID int64) error {
	now := time.Now()
	return r.DB.Model(&model.Group{}).
		Where("chat_id = ?", chatID).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   now,
		}).Error
}

func (r *GroupRepository) ListActive(limit int) ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.Where("is_active = ?", true).Order("title").Limit(limit).Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Group{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
