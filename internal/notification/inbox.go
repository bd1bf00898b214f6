package notification

import (
	"context"

	"github.com/ticketbook/achievement-engine/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Inbox serves the recipient-scoped reads and updates. Every call takes the
// recipient id so one user can never touch another's notifications.
type Inbox struct {
	store Store
}

func NewInbox(store Store) *Inbox {
	return &Inbox{store: store}
}

func (i *Inbox) List(ctx context.Context, userID uint, limit int, unreadOnly bool) ([]models.Notification, error) {
	if userID == 0 {
		return nil, ErrRecipientRequired
	}
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return i.store.ListByRecipient(ctx, userID, limit, unreadOnly)
}

func (i *Inbox) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrRecipientRequired
	}
	return i.store.CountUnread(ctx, userID)
}

func (i *Inbox) MarkRead(ctx context.Context, userID, id uint) error {
	if userID == 0 {
		return ErrRecipientRequired
	}
	return i.store.MarkRead(ctx, userID, id)
}

func (i *Inbox) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, ErrRecipientRequired
	}
	return i.store.MarkAllRead(ctx, userID)
}

func (i *Inbox) Delete(ctx context.Context, userID, id uint) error {
	if userID == 0 {
		return ErrRecipientRequired
	}
	return i.store.Delete(ctx, userID, id)
}
