package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeFollow NotificationType = "follow"
	NotificationTypeLike   NotificationType = "like"
	NotificationTypeSystem NotificationType = "system"
)

type Notification struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"not null;index"` // Recipient
	ActorID   *uint            `json:"actor_id"`                      // nil for system notifications
	Type      NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	TargetURL *string          `json:"target_url"`
	IsRead    bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time        `json:"created_at"`
}
