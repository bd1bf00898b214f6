// Package achievement evaluates a fixed catalog of milestones against a user's
// activity and records each newly satisfied one exactly once.
package achievement

import (
	"fmt"
	"time"

	"github.com/ticketbook/achievement-engine/internal/models"
)

// Definition is one catalog entry. Check must be pure and monotonic: once it
// returns true for a user it keeps returning true as activity grows.
type Definition struct {
	Code        string
	Name        string
	Description string
	Icon        string
	Check       func(user models.User, c Context) bool
}

// EarlyBirdCutoff is the signup instant before which users earn EARLY_BIRD.
var EarlyBirdCutoff = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func ticketsAtLeast(n int64) func(models.User, Context) bool {
	return func(_ models.User, c Context) bool { return c.TicketCount >= n }
}

func likesAtLeast(n int64) func(models.User, Context) bool {
	return func(_ models.User, c Context) bool { return c.LikeCount >= n }
}

func followersAtLeast(n int64) func(models.User, Context) bool {
	return func(_ models.User, c Context) bool { return c.FollowerCount >= n }
}

// DefaultDefinitions returns the catalog in display order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Code: "FIRST_TICKET", Name: "First Ticket", Description: "Collect your first ticket.", Icon: "🎫", Check: ticketsAtLeast(1)},
		{Code: "COLLECTOR_10", Name: "Collector", Description: "Collect 10 tickets.", Icon: "📚", Check: ticketsAtLeast(10)},
		{Code: "COLLECTOR_50", Name: "Avid Collector", Description: "Collect 50 tickets.", Icon: "🗂️", Check: ticketsAtLeast(50)},
		{Code: "COLLECTOR_100", Name: "Master Collector", Description: "Collect 100 tickets.", Icon: "🏆", Check: ticketsAtLeast(100)},
		{Code: "FIRST_LIKE", Name: "First Like", Description: "Receive your first like.", Icon: "❤️", Check: likesAtLeast(1)},
		{Code: "POPULAR_100", Name: "Popular", Description: "Receive 100 likes.", Icon: "🔥", Check: likesAtLeast(100)},
		{Code: "FIRST_FOLLOWER", Name: "First Follower", Description: "Gain your first follower.", Icon: "👋", Check: followersAtLeast(1)},
		{Code: "INFLUENCER_100", Name: "Influencer", Description: "Gain 100 followers.", Icon: "🌟", Check: followersAtLeast(100)},
		{
			Code:        "EARLY_BIRD",
			Name:        "Early Bird",
			Description: "Joined before 2025.",
			Icon:        "🐦",
			Check: func(u models.User, _ Context) bool {
				return !u.CreatedAt.IsZero() && u.CreatedAt.Before(EarlyBirdCutoff)
			},
		},
	}
}

// Registry is an immutable, ordered set of definitions keyed by code.
type Registry struct {
	defs   []Definition
	byCode map[string]int
}

// NewRegistry builds a registry from defs, rejecting empty or duplicate codes.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:   make([]Definition, 0, len(defs)),
		byCode: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("achievement definition %q has no code", d.Name)
		}
		if d.Check == nil {
			return nil, fmt.Errorf("achievement %s has no check", d.Code)
		}
		if _, dup := r.byCode[d.Code]; dup {
			return nil, fmt.Errorf("duplicate achievement code %s", d.Code)
		}
		r.byCode[d.Code] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return r, nil
}

// DefaultRegistry builds the registry for the built-in catalog.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDefinitions())
	if err != nil {
		panic(err)
	}
	return r
}

// All returns the definitions in insertion order. The slice is a copy.
func (r *Registry) All() []Definition {
	return append([]Definition(nil), r.defs...)
}

// Lookup returns the definition registered under code.
func (r *Registry) Lookup(code string) (Definition, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}
