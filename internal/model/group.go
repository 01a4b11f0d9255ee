package model

import "time"

// Group 机器人所在的群组
type Group struct {
	BaseModel
	ChatID       int64      `gorm:"uniqueIndex;not null" json:"chatId"`
	Title        string     `gorm:"size:255" json:"title"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	MembersCount int        `gorm:"default:0" json:"membersCount"`
	JoinedAt     time.Time  `json:"joinedAt"`
	LeftAt       *time.Time `json:"leftAt"`
}

func (Group) TableName() string {
	return "groups"
}
