package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 积分来源
const (
	PointsSourceCheckin   = "checkin"
	PointsSourceTranslate = "translate"
	PointsSourceWebpage   = "webpage"
	PointsSourceHeatmap   = "heatmap"
	PointsSourceAdmin     = "admin"
)

// PointsHistory 积分流水，只追加，任何情况下不修改不删除
type PointsHistory struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecordID    string    `gorm:"size:36;uniqueIndex" json:"recordId"`
	TelegramID  int64     `gorm:"index;not null" json:"telegramId"`
	Amount      int       `gorm:"not null" json:"amount"` // 可为负数
	Source      string    `gorm:"size:32;index" json:"source"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}

func (PointsHistory) TableName() string {
	return "points_history"
}

func (p *PointsHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if p.RecordID == "" {
		p.RecordID = uuid.New().String()
	}
	return
}
