package model

import (
	"errors"
	"fmt"
	"time"

	"chatrelay/platform"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSessionExists = errors.New("chat session already exists")

// ChatSession 表示一个用户名下的独立对话线程
type ChatSession struct {
	ChatId    string    `gorm:"type:varchar(191);primaryKey" json:"chat_id"`
	UserId    string    `gorm:"type:varchar(191);not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	Messages  []Message `gorm:"foreignKey:ChatId;references:ChatId" json:"-"`
}

// CreateChatSession inserts a new session row. Identifiers are generated
// fresh per conversation, so an existing id is a caller error.
func CreateChatSession(userId, chatId string) error {
	db := platform.DB
	err := db.Create(&ChatSession{ChatId: chatId, UserId: userId}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSessionExists
		}
		return fmt.Errorf("create chat session: %w", err)
	}
	return nil
}

// EnsureChatSession is the create-if-absent variant used when the caller
// supplies the chat id of a conversation it wants to resume.
func EnsureChatSession(userId, chatId string) error {
	db := platform.DB
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ChatSession{ChatId: chatId, UserId: userId}).Error
	if err != nil {
		return fmt.Errorf("ensure chat session: %w", err)
	}
	return nil
}

// ListChatSessions returns the chat ids owned by a user, empty if none.
func ListChatSessions(userId string) ([]string, error) {
	db := platform.DB
	chatIds := make([]string, 0)
	err := db.Model(&ChatSession{}).
		Where("user_id = ?", userId).
		Order("created_at").
		Pluck("chat_id", &chatIds).Error
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	return chatIds, nil
}

func CountChatSessions() (int64, error) {
	db := platform.DB
	var count int64
	if err := db.Model(&ChatSession{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chat sessions: %w", err)
	}
	return count, nil
}
