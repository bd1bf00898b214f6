package achievement

import (
	"context"
	"errors"
	"fmt"

	"github.com/ticketbook/achievement-engine/internal/events"
	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/models"
	"gorm.io/gorm"
)

type Evaluator struct {
	db       *gorm.DB
	registry *Registry
	builder  ContextBuilder
	ledger   GrantStore
	log      *logger.Logger
}

func NewEvaluator(db *gorm.DB, registry *Registry, builder ContextBuilder, ledger GrantStore, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{
		db:       db,
		registry: registry,
		builder:  builder,
		ledger:   ledger,
		log:      log.With("component", "achievement_evaluator"),
	}
}

// EvaluateAll grants every catalog entry the user newly satisfies and returns
// the codes inserted by this call. A user that no longer exists is a no-op.
// A context read failure aborts before anything is granted; a failure on one
// rule is logged and the remaining rules still run.
func (e *Evaluator) EvaluateAll(ctx context.Context, userID uint) ([]string, error) {
	var user models.User
	if err := e.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	c, err := e.builder.BuildContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build context for user %d: %w", userID, err)
	}

	var granted []string
	for _, def := range e.registry.All() {
		ok, err := e.evaluateRule(ctx, user, c, def)
		if err != nil {
			e.log.Error("achievement rule failed",
				"user_id", userID,
				"achievement", def.Code,
				"error", err,
			)
			continue
		}
		if ok {
			granted = append(granted, def.Code)
		}
	}

	if len(granted) > 0 {
		e.log.Info("achievements granted", "user_id", userID, "codes", granted)
	}
	return granted, nil
}

func (e *Evaluator) evaluateRule(ctx context.Context, user models.User, c Context, def Definition) (granted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			granted, err = false, fmt.Errorf("rule panic: %v", r)
		}
	}()

	has, err := e.ledger.HasGrant(ctx, user.ID, def.Code)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	if has || !def.Check(user, c) {
		return false, nil
	}
	inserted, err := e.ledger.Grant(ctx, user.ID, def.Code)
	if err != nil {
		return false, fmt.Errorf("grant: %w", err)
	}
	return inserted, nil
}

// HandleEvent re-evaluates the user an event concerns.
func (e *Evaluator) HandleEvent(ctx context.Context, event events.Event) error {
	_, err := e.EvaluateAll(ctx, event.UserID)
	return err
}

// Subscribe attaches the evaluator to every event that can move a counter.
func (e *Evaluator) Subscribe(bus events.Bus) {
	bus.Subscribe(events.TicketCreated, e.HandleEvent)
	bus.Subscribe(events.LikeCreated, e.HandleEvent)
	bus.Subscribe(events.FollowCreated, e.HandleEvent)
}
