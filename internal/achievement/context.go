package achievement

import (
	"context"
	"fmt"

	"github.com/ticketbook/achievement-engine/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Context is a point-in-time snapshot of the counters rules look at. It is
// only valid for the evaluation that built it.
type Context struct {
	TicketCount   int64
	LikeCount     int64
	FollowerCount int64
}

type ContextBuilder interface {
	BuildContext(ctx context.Context, userID uint) (Context, error)
}

// Aggregator computes Context from the relational store. The three counts are
// read independently; a slightly stale count is corrected by the next event.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

func (a *Aggregator) BuildContext(ctx context.Context, userID uint) (Context, error) {
	var c Context
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.db.WithContext(gctx).Model(&models.UserTicket{}).
			Where("user_id = ?", userID).Count(&c.TicketCount).Error; err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.db.WithContext(gctx).Model(&models.Like{}).
			Where("target_user_id = ?", userID).Count(&c.LikeCount).Error; err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.db.WithContext(gctx).Model(&models.Follow{}).
			Where("following_id = ?", userID).Count(&c.FollowerCount).Error; err != nil {
			return fmt.Errorf("count followers: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Context{}, err
	}
	return c, nil
}
