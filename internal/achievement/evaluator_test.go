package achievement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ticketbook/achievement-engine/internal/events"
	"github.com/ticketbook/achievement-engine/internal/models"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *Ledger) {
	t.Helper()
	db := setupDB(t)
	ledger := NewLedger(db)
	return NewEvaluator(db, DefaultRegistry(), NewAggregator(db), ledger, nil), ledger
}

// staleLedger always answers "not granted", as a concurrent evaluation would
// when it read before the other one inserted.
type staleLedger struct {
	*Ledger
}

func (staleLedger) HasGrant(context.Context, uint, string) (bool, error) { return false, nil }

type failingBuilder struct{}

func (failingBuilder) BuildContext(context.Context, uint) (Context, error) {
	return Context{}, errors.New("database is down")
}

type fixedBuilder Context

func (f fixedBuilder) BuildContext(context.Context, uint) (Context, error) { return Context(f), nil }

func TestEvaluateAll_FirstTicket(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvaluator(t)
	user := createUser(t, e.db, "alice")

	collectTickets(t, e.db, user.ID, 1, 1)

	granted, err := e.EvaluateAll(ctx, user.ID)
	if err != nil {
		t.Fatalf("EvaluateAll returned error: %v", err)
	}
	if len(granted) != 1 || granted[0] != "FIRST_TICKET" {
		t.Errorf("expected only FIRST_TICKET granted, got %v", granted)
	}

	codes := grantedCodes(t, e.db, user.ID)
	if codes["FIRST_TICKET"] != 1 {
		t.Error("expected FIRST_TICKET to be recorded")
	}
	if codes["COLLECTOR_10"] != 0 {
		t.Error("expected COLLECTOR_10 to remain ungranted")
	}
}

func TestEvaluateAll_IdempotentAndMonotonic(t *testing.T) {
	ctx := context.Background()
	e, ledger := newTestEvaluator(t)
	user := createUser(t, e.db, "alice")
	collectTickets(t, e.db, user.ID, 1, 10)
	e.db.Create(&models.Follow{FollowerID: 99, FollowingID: user.ID})

	first, err := e.EvaluateAll(ctx, user.ID)
	if err != nil {
		t.Fatalf("first EvaluateAll returned error: %v", err)
	}
	if len(first) != 3 {
		t.Errorf("expected FIRST_TICKET, COLLECTOR_10, FIRST_FOLLOWER, got %v", first)
	}

	second, err := e.EvaluateAll(ctx, user.ID)
	if err != nil {
		t.Fatalf("second EvaluateAll returned error: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("expected no new grants on re-evaluation, got %v", second)
	}

	// Counters dropping below a threshold must not revoke anything.
	e.db.Unscoped().Where("user_id = ?", user.ID).Delete(&models.UserTicket{})
	if _, err := e.EvaluateAll(ctx, user.ID); err != nil {
		t.Fatalf("third EvaluateAll returned error: %v", err)
	}
	for _, code := range first {
		has, err := ledger.HasGrant(ctx, user.ID, code)
		if err != nil || !has {
			t.Errorf("expected %s to stay granted, got %v (err %v)", code, has, err)
		}
	}
	for code, n := range grantedCodes(t, e.db, user.ID) {
		if n != 1 {
			t.Errorf("expected one row for %s, got %d", code, n)
		}
	}
}

func TestEvaluateAll_MissingUser(t *testing.T) {
	e, _ := newTestEvaluator(t)

	granted, err := e.EvaluateAll(context.Background(), 12345)
	if err != nil {
		t.Fatalf("expected no error for missing user, got %v", err)
	}
	if len(granted) != 0 {
		t.Errorf("expected no grants, got %v", granted)
	}
}

func TestEvaluateAll_ContextFailureGrantsNothing(t *testing.T) {
	db := setupDB(t)
	user := createUser(t, db, "alice")
	user.CreatedAt = EarlyBirdCutoff.Add(-24 * time.Hour)
	db.Save(&user)

	e := NewEvaluator(db, DefaultRegistry(), failingBuilder{}, NewLedger(db), nil)
	if _, err := e.EvaluateAll(context.Background(), user.ID); err == nil {
		t.Fatal("expected error when context aggregation fails, got nil")
	}
	if codes := grantedCodes(t, db, user.ID); len(codes) != 0 {
		t.Errorf("expected no grants after aborted evaluation, got %v", codes)
	}
}

func TestEvaluateAll_RuleFailureIsIsolated(t *testing.T) {
	db := setupDB(t)
	user := createUser(t, db, "alice")

	registry, err := NewRegistry([]Definition{
		{Code: "EXPLODES", Check: func(models.User, Context) bool { panic("bad rule") }},
		{Code: "ALWAYS", Check: func(models.User, Context) bool { return true }},
	})
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	e := NewEvaluator(db, registry, fixedBuilder{}, NewLedger(db), nil)
	granted, err := e.EvaluateAll(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("EvaluateAll returned error: %v", err)
	}
	if len(granted) != 1 || granted[0] != "ALWAYS" {
		t.Errorf("expected ALWAYS granted despite panicking rule, got %v", granted)
	}
}

func TestEvaluateAll_ExactlyOnceUnderRace(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	user := createUser(t, db, "alice")
	collectTickets(t, db, user.ID, 1, 11)

	// Both evaluations believe COLLECTOR_10 is ungranted, like the 10th and
	// 11th ticket events racing past each other's check.
	ledger := staleLedger{NewLedger(db)}
	e := NewEvaluator(db, DefaultRegistry(), NewAggregator(db), ledger, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.EvaluateAll(ctx, user.ID); err != nil {
				t.Errorf("EvaluateAll returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := e.EvaluateAll(ctx, user.ID); err != nil {
		t.Fatalf("EvaluateAll returned error: %v", err)
	}

	if n := grantedCodes(t, db, user.ID)["COLLECTOR_10"]; n != 1 {
		t.Errorf("expected exactly one COLLECTOR_10 grant, got %d", n)
	}
}

func TestEvaluator_Subscribe(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEvaluator(t)
	user := createUser(t, e.db, "alice")
	bus := events.NewInProcessBus(nil)
	e.Subscribe(bus)

	e.db.Create(&models.Like{UserID: 50, TargetUserID: user.ID})
	bus.Publish(ctx, events.NewLikeCreated(user.ID))

	e.db.Create(&models.Follow{FollowerID: 50, FollowingID: user.ID})
	bus.Publish(ctx, events.NewFollowCreated(user.ID))

	codes := grantedCodes(t, e.db, user.ID)
	if codes["FIRST_LIKE"] != 1 || codes["FIRST_FOLLOWER"] != 1 {
		t.Errorf("expected FIRST_LIKE and FIRST_FOLLOWER from published events, got %v", codes)
	}

	// A deleted user referenced by a late event is ignored.
	bus.Publish(ctx, events.NewTicketCreated(9999))
}
