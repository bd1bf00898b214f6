package models

import (
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex"`
	Email    string
	Role     string `gorm:"default:user"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
