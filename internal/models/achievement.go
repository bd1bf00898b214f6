package models

import (
	"time"
)

// AchievementGrant is the durable record that UserID unlocked AchievementCode.
// Rows are inserted once and never updated or deleted.
type AchievementGrant struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	AchievementCode string    `json:"achievement_code" gorm:"not null;size:64;uniqueIndex:idx_user_achievement"`
	AchievedAt      time.Time `json:"achieved_at" gorm:"not null"`
}
