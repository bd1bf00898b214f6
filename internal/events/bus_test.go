package events

import (
	"context"
	"errors"
	"testing"
)

var _ Bus = (*InProcessBus)(nil)
var _ Bus = (*Recorder)(nil)

func TestInProcessBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("DeliversToSubscribersOfType", func(t *testing.T) {
		bus := NewInProcessBus(nil)
		var got []Event
		bus.Subscribe(TicketCreated, func(_ context.Context, e Event) error {
			got = append(got, e)
			return nil
		})
		bus.Subscribe(FollowCreated, func(_ context.Context, e Event) error {
			t.Errorf("follow handler received %s event", e.Type)
			return nil
		})

		bus.Publish(ctx, NewTicketCreated(7))

		if len(got) != 1 {
			t.Fatalf("expected 1 delivered event, got %d", len(got))
		}
		if got[0].UserID != 7 || got[0].Type != TicketCreated {
			t.Errorf("unexpected event delivered: %+v", got[0])
		}
		if got[0].ID == "" {
			t.Error("expected event id to be set")
		}
	})

	t.Run("RunsHandlersInRegistrationOrder", func(t *testing.T) {
		bus := NewInProcessBus(nil)
		var order []int
		for i := 1; i <= 3; i++ {
			i := i
			bus.Subscribe(LikeCreated, func(context.Context, Event) error {
				order = append(order, i)
				return nil
			})
		}

		bus.Publish(ctx, NewLikeCreated(1))

		if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
			t.Errorf("expected handlers to run as [1 2 3], got %v", order)
		}
	})

	t.Run("IsolatesErrorsAndPanics", func(t *testing.T) {
		bus := NewInProcessBus(nil)
		reached := false
		bus.Subscribe(FollowCreated, func(context.Context, Event) error {
			return errors.New("boom")
		})
		bus.Subscribe(FollowCreated, func(context.Context, Event) error {
			panic("handler exploded")
		})
		bus.Subscribe(FollowCreated, func(context.Context, Event) error {
			reached = true
			return nil
		})

		bus.Publish(ctx, NewFollowCreated(3))

		if !reached {
			t.Error("expected handler after failing ones to run")
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		bus := NewInProcessBus(nil)
		calls := 0
		unsubscribe := bus.Subscribe(TicketCreated, func(context.Context, Event) error {
			calls++
			return nil
		})

		bus.Publish(ctx, NewTicketCreated(1))
		unsubscribe()
		bus.Publish(ctx, NewTicketCreated(1))

		if calls != 1 {
			t.Errorf("expected 1 call before unsubscribe, got %d", calls)
		}
	})

	t.Run("NoSubscribers", func(t *testing.T) {
		bus := NewInProcessBus(nil)
		bus.Publish(ctx, NewTicketCreated(1))
	})
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	rec.Publish(context.Background(), NewLikeCreated(4))
	rec.Publish(context.Background(), NewFollowCreated(5))

	got := rec.Events()
	if len(got) != 2 {
		t.Fatalf("expected 2 recorded events, got %d", len(got))
	}
	if got[0].Type != LikeCreated || got[1].Type != FollowCreated {
		t.Errorf("unexpected recorded types: %s, %s", got[0].Type, got[1].Type)
	}
}
