package models

import (
	"gorm.io/gorm"
)

// UserTicket records that a user collected a ticket into their book.
type UserTicket struct {
	gorm.Model
	UserID   uint `json:"user_id" gorm:"uniqueIndex:idx_user_ticket"`
	TicketID uint `json:"ticket_id" gorm:"uniqueIndex:idx_user_ticket"`
}

// Like is a like given by UserID to content owned by TargetUserID.
type Like struct {
	gorm.Model
	UserID       uint `json:"user_id" gorm:"uniqueIndex:idx_like_pair"`
	TargetUserID uint `json:"target_user_id" gorm:"uniqueIndex:idx_like_pair;index"`
}

type Follow struct {
	gorm.Model
	FollowerID  uint `json:"follower_id" gorm:"uniqueIndex:idx_follow_pair"`
	FollowingID uint `json:"following_id" gorm:"uniqueIndex:idx_follow_pair;index"`
}
