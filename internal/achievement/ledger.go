package achievement

import (
	"context"
	"time"

	"github.com/ticketbook/achievement-engine/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrantStore interface {
	HasGrant(ctx context.Context, userID uint, code string) (bool, error)
	Grant(ctx context.Context, userID uint, code string) (bool, error)
	ListGrants(ctx context.Context, userID uint) ([]models.AchievementGrant, error)
}

// Ledger persists grants. The (user_id, achievement_code) unique index is the
// synchronization point between concurrent evaluations of the same user.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

func (l *Ledger) HasGrant(ctx context.Context, userID uint, code string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.AchievementGrant{}).
		Where("user_id = ? AND achievement_code = ?", userID, code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant records the pair and reports whether this call inserted it. A pair
// that already exists, including one inserted concurrently, yields false, nil.
func (l *Ledger) Grant(ctx context.Context, userID uint, code string) (bool, error) {
	grant := models.AchievementGrant{
		UserID:          userID,
		AchievementCode: code,
		AchievedAt:      l.now().UTC(),
	}
	res := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_code"}},
		DoNothing: true,
	}).Create(&grant)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (l *Ledger) ListGrants(ctx context.Context, userID uint) ([]models.AchievementGrant, error) {
	var grants []models.AchievementGrant
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("achieved_at asc").
		Find(&grants).Error
	return grants, err
}
