// Package notification creates per-recipient notification records, fans
// system messages out to every user and serves the recipient's inbox.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/ticketbook/achievement-engine/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound indicates the notification does not exist for that recipient.
	ErrNotFound = errors.New("notification not found")
	// ErrRecipientRequired indicates a zero recipient user id.
	ErrRecipientRequired = errors.New("recipient user id is required")
	// ErrTypeRequired indicates an empty notification type.
	ErrTypeRequired = errors.New("notification type is required")
	// ErrMessageRequired indicates an empty message.
	ErrMessageRequired = errors.New("notification message is required")
)

// Store is the persistence boundary for notifications.
type Store interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListUserIDs(ctx context.Context) ([]uint, error)
	ListByRecipient(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID, id uint) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(n).Error
}

func (s *GormStore) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.User{}).Order("id asc").Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) ListByRecipient(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *GormStore) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *GormStore) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.exists(ctx, userID, id)
	}
	return nil
}

func (s *GormStore) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (s *GormStore) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// exists distinguishes "already read" from "not yours / missing" after an
// update that touched no rows.
func (s *GormStore) exists(ctx context.Context, userID, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
