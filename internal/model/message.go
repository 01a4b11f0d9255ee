package model

import "time"

// 消息类型
const (
	MessageKindText     = "text"
	MessageKindPhoto    = "photo"
	MessageKindDocument = "document"
	MessageKindSystem   = "system"
)

// Message 聊天消息存档，供统计、热力图和后台浏览使用
type Message struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID  int       `gorm:"index:idx_chat_message" json:"messageId"`
	ChatID     int64     `gorm:"index:idx_chat_message;index" json:"chatId"`
	TelegramID int64     `gorm:"index" json:"telegramId"`
	Kind       string    `gorm:"size:16" json:"kind"`
	Text       string    `gorm:"type:text" json:"text"`
	FileID     string    `gorm:"size:128" json:"fileId"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
