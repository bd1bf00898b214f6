// Package events carries domain events from the producers that commit state
// changes to the listeners that enrich them (achievements, notifications).
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TicketCreated Type = "ticket.created"
	LikeCreated   Type = "like.created"
	FollowCreated Type = "follow.created"
)

// Event is a fact that has already been committed elsewhere. UserID is the
// user the fact is about: the collector for ticket.created, the liked user for
// like.created and the followed user for follow.created.
type Event struct {
	ID         string
	Type       Type
	UserID     uint
	OccurredAt time.Time
}

func newEvent(t Type, userID uint) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

func NewTicketCreated(userID uint) Event      { return newEvent(TicketCreated, userID) }
func NewLikeCreated(targetUserID uint) Event  { return newEvent(LikeCreated, targetUserID) }
func NewFollowCreated(followingID uint) Event { return newEvent(FollowCreated, followingID) }

// Handler reacts to one event. A returned error is logged by the bus and never
// reaches the publisher.
type Handler func(ctx context.Context, event Event) error

type Bus interface {
	Publish(ctx context.Context, event Event)
	Subscribe(t Type, h Handler) (unsubscribe func())
}
