// Package social holds the producer actions that feed the engine: collecting a
// ticket, liking and following. Each commits its own row first, then publishes
// the matching event and, for likes and follows, notifies the target.
package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/ticketbook/achievement-engine/internal/events"
	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/models"
	"github.com/ticketbook/achievement-engine/internal/notification"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfAction   = errors.New("cannot like or follow yourself")
)

// Notifier is the single-recipient half of the notification dispatcher.
type Notifier interface {
	Create(ctx context.Context, in notification.CreateInput) (models.Notification, error)
}

type Service struct {
	db       *gorm.DB
	bus      events.Bus
	notifier Notifier
	log      *logger.Logger
}

func NewService(db *gorm.DB, bus events.Bus, notifier Notifier, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{db: db, bus: bus, notifier: notifier, log: log.With("component", "social")}
}

// CollectTicket adds the ticket to the user's book. Collecting the same ticket
// twice is not an error and publishes nothing.
func (s *Service) CollectTicket(ctx context.Context, userID, ticketID uint) (bool, error) {
	created, err := s.insertOnce(ctx, &models.UserTicket{UserID: userID, TicketID: ticketID},
		"user_id", "ticket_id")
	if err != nil {
		return false, fmt.Errorf("collect ticket: %w", err)
	}
	if created {
		s.bus.Publish(ctx, events.NewTicketCreated(userID))
	}
	return created, nil
}

func (s *Service) Like(ctx context.Context, actorID, targetUserID uint) (bool, error) {
	actor, err := s.loadPair(ctx, actorID, targetUserID)
	if err != nil {
		return false, err
	}
	created, err := s.insertOnce(ctx, &models.Like{UserID: actorID, TargetUserID: targetUserID},
		"user_id", "target_user_id")
	if err != nil {
		return false, fmt.Errorf("like: %w", err)
	}
	if !created {
		return false, nil
	}

	s.bus.Publish(ctx, events.NewLikeCreated(targetUserID))
	s.notify(ctx, notification.CreateInput{
		UserID:    targetUserID,
		ActorID:   &actorID,
		Type:      models.NotificationTypeLike,
		Message:   fmt.Sprintf("%s liked your collection.", actor.Username),
		TargetURL: profileURL(actorID),
	})
	return true, nil
}

func (s *Service) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	actor, err := s.loadPair(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	created, err := s.insertOnce(ctx, &models.Follow{FollowerID: followerID, FollowingID: followingID},
		"follower_id", "following_id")
	if err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	if !created {
		return false, nil
	}

	s.bus.Publish(ctx, events.NewFollowCreated(followingID))
	s.notify(ctx, notification.CreateInput{
		UserID:    followingID,
		ActorID:   &followerID,
		Type:      models.NotificationTypeFollow,
		Message:   fmt.Sprintf("%s started following you.", actor.Username),
		TargetURL: profileURL(followerID),
	})
	return true, nil
}

func (s *Service) insertOnce(ctx context.Context, row interface{}, columns ...string) (bool, error) {
	cols := make([]clause.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, clause.Column{Name: c})
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Service) loadPair(ctx context.Context, actorID, targetID uint) (models.User, error) {
	if actorID == targetID {
		return models.User{}, ErrSelfAction
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", []uint{actorID, targetID}).Find(&users).Error; err != nil {
		return models.User{}, err
	}
	if len(users) != 2 {
		return models.User{}, ErrUserNotFound
	}
	for _, u := range users {
		if u.ID == actorID {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// notify is best-effort: the primary action has already committed.
func (s *Service) notify(ctx context.Context, in notification.CreateInput) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Create(ctx, in); err != nil {
		s.log.Warn("targeted notification failed",
			"user_id", in.UserID,
			"type", string(in.Type),
			"error", err,
		)
	}
}

func profileURL(userID uint) *string {
	url := fmt.Sprintf("/users/%d", userID)
	return &url
}
