package model

import (
	"fmt"
	"time"

	"chatrelay/platform"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ChatId    string    `gorm:"type:varchar(191);not null;index" json:"chat_id"`
	Role      string    `gorm:"type:varchar(64);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// Turn is the {role, content} pair replayed into a live session and
// returned by the history endpoint.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AppendMessage inserts one message record. Records are immutable once
// written; insertion order is the source of truth for replay.
func AppendMessage(chatId, role, content string) error {
	db := platform.DB
	err := db.Create(&Message{
		ChatId:  chatId,
		Role:    role,
		Content: content,
	}).Error
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// LoadHistory returns a conversation's turns oldest first. Timestamp
// resolution may coincide, so the auto-increment id breaks ties.
func LoadHistory(chatId string) ([]Turn, error) {
	db := platform.DB
	turns := make([]Turn, 0)
	err := db.Model(&Message{}).
		Where("chat_id = ?", chatId).
		Order("created_at, id").
		Select("role", "content").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return turns, nil
}

func CountMessages() (int64, error) {
	db := platform.DB
	var count int64
	if err := db.Model(&Message{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
