package achievement

import (
	"testing"

	"github.com/ticketbook/achievement-engine/internal/database"
	"github.com/ticketbook/achievement-engine/internal/models"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func collectTickets(t *testing.T, db *gorm.DB, userID uint, from, to uint) {
	t.Helper()
	for id := from; id <= to; id++ {
		if err := db.Create(&models.UserTicket{UserID: userID, TicketID: id}).Error; err != nil {
			t.Fatalf("failed to collect ticket %d: %v", id, err)
		}
	}
}

func grantedCodes(t *testing.T, db *gorm.DB, userID uint) map[string]int {
	t.Helper()
	var grants []models.AchievementGrant
	if err := db.Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		t.Fatalf("failed to load grants: %v", err)
	}
	out := make(map[string]int)
	for _, g := range grants {
		out[g.AchievementCode]++
	}
	return out
}
