package achievement

import (
	"context"
	"math"
	"time"
)

// DefinitionView is the public shape of a catalog entry.
type DefinitionView struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type UserAchievementView struct {
	DefinitionView
	Achieved   bool       `json:"achieved"`
	AchievedAt *time.Time `json:"achieved_at,omitempty"`
}

type Stats struct {
	Total      int `json:"total"`
	Unlocked   int `json:"unlocked"`
	Percentage int `json:"percentage"`
}

// Service answers the read-side achievement queries.
type Service struct {
	registry *Registry
	ledger   GrantStore
}

func NewService(registry *Registry, ledger GrantStore) *Service {
	return &Service{registry: registry, ledger: ledger}
}

func view(d Definition) DefinitionView {
	return DefinitionView{Code: d.Code, Name: d.Name, Description: d.Description, Icon: d.Icon}
}

func (s *Service) ListDefinitions() []DefinitionView {
	defs := s.registry.All()
	out := make([]DefinitionView, 0, len(defs))
	for _, d := range defs {
		out = append(out, view(d))
	}
	return out
}

// ListUserAchievements returns the whole catalog annotated with the user's
// grants. Grants for codes no longer in the catalog are ignored.
func (s *Service) ListUserAchievements(ctx context.Context, userID uint) ([]UserAchievementView, error) {
	grants, err := s.ledger.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievedAt := make(map[string]time.Time, len(grants))
	for _, g := range grants {
		achievedAt[g.AchievementCode] = g.AchievedAt
	}

	defs := s.registry.All()
	out := make([]UserAchievementView, 0, len(defs))
	for _, d := range defs {
		v := UserAchievementView{DefinitionView: view(d)}
		if at, ok := achievedAt[d.Code]; ok {
			at := at
			v.Achieved = true
			v.AchievedAt = &at
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) UserStats(ctx context.Context, userID uint) (Stats, error) {
	list, err := s.ListUserAchievements(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Total: len(list)}
	for _, v := range list {
		if v.Achieved {
			stats.Unlocked++
		}
	}
	if stats.Total > 0 {
		stats.Percentage = int(math.Round(float64(stats.Unlocked) * 100 / float64(stats.Total)))
	}
	return stats, nil
}
