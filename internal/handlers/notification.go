package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/ticketbook/achievement-engine/internal/auth"
	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/models"
	"github.com/ticketbook/achievement-engine/internal/notification"
)

// Streamer delivers notifications for one recipient as they are published.
// Subscribe blocks until ctx is done or onMsg returns an error.
type Streamer interface {
	Subscribe(ctx context.Context, userID uint, onMsg func(models.Notification) error) error
}

type NotificationHandler struct {
	inbox       *notification.Inbox
	dispatcher  *notification.Dispatcher
	authHandler *auth.AuthHandler
	streamer    Streamer
	log         *logger.Logger
}

func NewNotificationHandler(inbox *notification.Inbox, dispatcher *notification.Dispatcher, authHandler *auth.AuthHandler) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, dispatcher: dispatcher, authHandler: authHandler, log: logger.Nop()}
}

// WithStreamer enables the live notification stream.
func (h *NotificationHandler) WithStreamer(s Streamer, log *logger.Logger) *NotificationHandler {
	h.streamer = s
	if log != nil {
		h.log = log
	}
	return h
}

func (h *NotificationHandler) Streaming() bool {
	return h.streamer != nil
}

func notificationError(err error) error {
	switch {
	case errors.Is(err, notification.ErrNotFound):
		return huma.Error404NotFound("Notification not found")
	case errors.Is(err, notification.ErrRecipientRequired):
		return huma.Error401Unauthorized("Unauthorized")
	case errors.Is(err, notification.ErrMessageRequired):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("Notification request failed: " + err.Error())
	}
}

type ListNotificationsInput struct {
	Limit      int  `query:"limit" doc:"Maximum number of notifications to return" minimum:"0" maximum:"200"`
	UnreadOnly bool `query:"unread_only" doc:"Only return unread notifications"`
}

type ListNotificationsOutput struct {
	Body []models.Notification
}

func (h *NotificationHandler) HandleList(ctx context.Context, input *ListNotificationsInput) (*ListNotificationsOutput, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	list, err := h.inbox.List(ctx, userID, input.Limit, input.UnreadOnly)
	if err != nil {
		return nil, notificationError(err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return &ListNotificationsOutput{Body: list}, nil
}

type UnreadCountOutput struct {
	Body struct {
		Count int64 `json:"count"`
	}
}

func (h *NotificationHandler) HandleUnreadCount(ctx context.Context, input *struct{}) (*UnreadCountOutput, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	count, err := h.inbox.UnreadCount(ctx, userID)
	if err != nil {
		return nil, notificationError(err)
	}
	res := &UnreadCountOutput{}
	res.Body.Count = count
	return res, nil
}

func (h *NotificationHandler) HandleStream(ctx context.Context, input *struct{}, send sse.Sender) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return
	}
	err = h.streamer.Subscribe(ctx, userID, func(n models.Notification) error {
		return send.Data(n)
	})
	if err != nil {
		h.log.Warn("Notification stream ended", "user_id", userID, "error", err)
	}
}

type NotificationIDInput struct {
	ID uint `path:"id"`
}

func (h *NotificationHandler) HandleMarkRead(ctx context.Context, input *NotificationIDInput) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.inbox.MarkRead(ctx, userID, input.ID); err != nil {
		return nil, notificationError(err)
	}
	return nil, nil
}

type MarkAllReadOutput struct {
	Body struct {
		Updated int64 `json:"updated"`
	}
}

func (h *NotificationHandler) HandleMarkAllRead(ctx context.Context, input *struct{}) (*MarkAllReadOutput, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := h.inbox.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, notificationError(err)
	}
	res := &MarkAllReadOutput{}
	res.Body.Updated = updated
	return res, nil
}

func (h *NotificationHandler) HandleDelete(ctx context.Context, input *NotificationIDInput) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.inbox.Delete(ctx, userID, input.ID); err != nil {
		return nil, notificationError(err)
	}
	return nil, nil
}

type BroadcastRequest struct {
	Body struct {
		Message   string  `json:"message" doc:"Notification text sent to every user" minLength:"1"`
		TargetURL *string `json:"target_url,omitempty" doc:"Optional link opened from the notification"`
	}
}

type BroadcastResponse struct {
	Body struct {
		OK     bool   `json:"ok"`
		Sent   int    `json:"sent"`
		Failed []uint `json:"failed"`
	}
}

func (h *NotificationHandler) HandleBroadcast(ctx context.Context, input *BroadcastRequest) (*BroadcastResponse, error) {
	if _, err := h.authHandler.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	result, err := h.dispatcher.BroadcastSystem(ctx, notification.BroadcastInput{
		Message:   input.Body.Message,
		TargetURL: input.Body.TargetURL,
	})
	if err != nil {
		return nil, notificationError(err)
	}

	res := &BroadcastResponse{}
	res.Body.OK = true
	res.Body.Sent = result.Sent
	res.Body.Failed = result.Failed
	if res.Body.Failed == nil {
		res.Body.Failed = []uint{}
	}
	return res, nil
}
