package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultBroadcastConcurrency = 8

// Publisher pushes a stored notification to live clients.
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Announcer mirrors a system broadcast to an out-of-band channel.
type Announcer interface {
	AnnounceBroadcast(message string, targetURL *string) error
}

type CreateInput struct {
	UserID    uint
	ActorID   *uint
	Type      models.NotificationType
	Message   string
	TargetURL *string
}

type BroadcastInput struct {
	Message   string
	TargetURL *string
}

// BroadcastResult counts successful creations. Failed lists recipients whose
// write failed; they are not retried.
type BroadcastResult struct {
	Sent   int
	Failed []uint
}

type Dispatcher struct {
	store       Store
	publisher   Publisher
	announcer   Announcer
	concurrency int
	log         *logger.Logger
}

type Option func(*Dispatcher)

func WithPublisher(p Publisher) Option { return func(d *Dispatcher) { d.publisher = p } }
func WithAnnouncer(a Announcer) Option { return func(d *Dispatcher) { d.announcer = a } }
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

func NewDispatcher(store Store, log *logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		store:       store,
		concurrency: defaultBroadcastConcurrency,
		log:         log.With("component", "notification_dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Create stores one notification for one recipient. Pushing it to live clients
// is best-effort and never fails the call.
func (d *Dispatcher) Create(ctx context.Context, in CreateInput) (models.Notification, error) {
	if in.UserID == 0 {
		return models.Notification{}, ErrRecipientRequired
	}
	if strings.TrimSpace(string(in.Type)) == "" {
		return models.Notification{}, ErrTypeRequired
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return models.Notification{}, ErrMessageRequired
	}

	n := models.Notification{
		UserID:    in.UserID,
		ActorID:   in.ActorID,
		Type:      in.Type,
		Message:   message,
		TargetURL: in.TargetURL,
	}
	if err := d.store.CreateNotification(ctx, &n); err != nil {
		return models.Notification{}, fmt.Errorf("create notification for user %d: %w", in.UserID, err)
	}

	if d.publisher != nil {
		if err := d.publisher.PublishNotification(ctx, n); err != nil {
			d.log.Warn("notification push failed", "notification_id", n.ID, "user_id", n.UserID, "error", err)
		}
	}
	return n, nil
}

// BroadcastSystem creates one system notification per user. Recipients are
// written concurrently and independently; a failed recipient is logged,
// reported in Failed and left out of Sent. Only failing to list the users
// fails the broadcast as a whole.
func (d *Dispatcher) BroadcastSystem(ctx context.Context, in BroadcastInput) (BroadcastResult, error) {
	if strings.TrimSpace(in.Message) == "" {
		return BroadcastResult{}, ErrMessageRequired
	}
	userIDs, err := d.store.ListUserIDs(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("list recipients: %w", err)
	}

	var (
		mu     sync.Mutex
		result BroadcastResult
	)
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			_, err := d.Create(ctx, CreateInput{
				UserID:    id,
				Type:      models.NotificationTypeSystem,
				Message:   in.Message,
				TargetURL: in.TargetURL,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.log.Error("broadcast recipient failed", "user_id", id, "error", err)
				result.Failed = append(result.Failed, id)
				return nil
			}
			result.Sent++
			return nil
		})
	}
	g.Wait()

	d.log.Info("system broadcast finished",
		"recipients", len(userIDs),
		"sent", result.Sent,
		"failed", len(result.Failed),
	)

	if d.announcer != nil {
		if err := d.announcer.AnnounceBroadcast(in.Message, in.TargetURL); err != nil {
			d.log.Warn("broadcast announcement failed", "error", err)
		}
	}
	return result, nil
}
