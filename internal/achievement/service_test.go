package achievement

import (
	"context"
	"testing"
)

func TestService_UserStats(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	user := createUser(t, db, "alice")
	ledger := NewLedger(db)
	svc := NewService(DefaultRegistry(), ledger)

	for _, code := range []string{"FIRST_TICKET", "FIRST_LIKE", "FIRST_FOLLOWER"} {
		if _, err := ledger.Grant(ctx, user.ID, code); err != nil {
			t.Fatalf("Grant(%s) returned error: %v", code, err)
		}
	}

	stats, err := svc.UserStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("UserStats returned error: %v", err)
	}
	if stats.Total != 9 || stats.Unlocked != 3 || stats.Percentage != 33 {
		t.Errorf("expected {9 3 33}, got %+v", stats)
	}

	t.Run("NoGrants", func(t *testing.T) {
		stats, err := svc.UserStats(ctx, 424242)
		if err != nil {
			t.Fatalf("UserStats returned error: %v", err)
		}
		if stats.Unlocked != 0 || stats.Percentage != 0 {
			t.Errorf("expected nothing unlocked, got %+v", stats)
		}
	})

	t.Run("RoundsPercentage", func(t *testing.T) {
		other := createUser(t, db, "bob")
		for _, code := range []string{"FIRST_TICKET", "COLLECTOR_10", "COLLECTOR_50", "COLLECTOR_100", "FIRST_LIKE", "POPULAR_100"} {
			ledger.Grant(ctx, other.ID, code)
		}
		stats, _ := svc.UserStats(ctx, other.ID)
		if stats.Percentage != 67 {
			t.Errorf("expected 6/9 to round to 67, got %d", stats.Percentage)
		}
	})
}

func TestService_ListUserAchievements(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	user := createUser(t, db, "alice")
	ledger := NewLedger(db)
	svc := NewService(DefaultRegistry(), ledger)

	ledger.Grant(ctx, user.ID, "FIRST_LIKE")
	ledger.Grant(ctx, user.ID, "RETIRED_CODE")

	list, err := svc.ListUserAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListUserAchievements returned error: %v", err)
	}
	if len(list) != 9 {
		t.Fatalf("expected the full catalog of 9, got %d", len(list))
	}
	for _, v := range list {
		switch v.Code {
		case "FIRST_LIKE":
			if !v.Achieved || v.AchievedAt == nil {
				t.Errorf("expected FIRST_LIKE achieved with timestamp, got %+v", v)
			}
		default:
			if v.Achieved || v.AchievedAt != nil {
				t.Errorf("expected %s not achieved, got %+v", v.Code, v)
			}
		}
	}

	defs := svc.ListDefinitions()
	if len(defs) != 9 || defs[0].Code != "FIRST_TICKET" {
		t.Errorf("unexpected definitions listing: %+v", defs)
	}
}
