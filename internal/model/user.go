package model

import (
	"time"
)

// User Telegram用户，积分余额与签到状态都挂在这里
type User struct {
	BaseModel
	TelegramID    int64      `gorm:"uniqueIndex;not null" json:"telegramId"`
	Username      string     `gorm:"size:64;index" json:"username"`
	FirstName     string     `gorm:"size:128" json:"firstName"`
	LastName      string     `gorm:"size:128" json:"lastName"`
	IsAdmin       bool       `gorm:"default:false" json:"isAdmin"`
	IsBot         bool       `gorm:"default:false" json:"isBot"`
	LanguageCode  string     `gorm:"size:10" json:"languageCode"`
	Points        int        `gorm:"default:0" json:"points"`
	CheckinStreak int        `gorm:"default:0" json:"checkinStreak"` // 连续签到天数
	LastCheckinAt *time.Time `json:"lastCheckinAt"`                  // 仅日期有意义，忽略时间部分
	IsBanned      bool       `gorm:"default:false" json:"isBanned"`
	IsMuted       bool       `gorm:"default:false" json:"isMuted"`
	MutedUntil    *time.Time `json:"mutedUntil"`
	JoinedAt      time.Time  `json:"joinedAt"`
	LastActivity  time.Time  `json:"lastActivity"`
}

func (User) TableName() string {
	return "users"
}

// LastCheckinDate 返回最近一次签到的日历日期（去掉时间部分）
func (u *User) LastCheckinDate() (time.Time, bool) {
	if u.LastCheckinAt == nil {
		return time.Time{}, false
	}
	t := *u.LastCheckinAt
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()), true
}
