package model

import (
	"fmt"
	"time"

	"chatrelay/platform"

	"gorm.io/gorm/clause"
)

// User 表示用户模型。用户标识由调用方提供，在第一次创建会话时隐式建档。
type User struct {
	UserId    string        `gorm:"type:varchar(191);primaryKey" json:"user_id"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	Sessions  []ChatSession `gorm:"foreignKey:UserId;references:UserId" json:"-"`
}

// EnsureUser inserts the user row if absent. Safe to call on every request.
func EnsureUser(userId string) error {
	db := platform.DB
	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&User{UserId: userId}).Error
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func CountUsers() (int64, error) {
	db := platform.DB
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
