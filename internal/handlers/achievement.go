package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ticketbook/achievement-engine/internal/achievement"
)

type AchievementHandler struct {
	service *achievement.Service
}

func NewAchievementHandler(service *achievement.Service) *AchievementHandler {
	return &AchievementHandler{service: service}
}

type ListAchievementsOutput struct {
	Body []achievement.DefinitionView
}

func (h *AchievementHandler) HandleListDefinitions(ctx context.Context, input *struct{}) (*ListAchievementsOutput, error) {
	return &ListAchievementsOutput{Body: h.service.ListDefinitions()}, nil
}

type UserAchievementsInput struct {
	UserID uint `path:"id" doc:"User whose achievements to list"`
}

type UserAchievementsOutput struct {
	Body []achievement.UserAchievementView
}

func (h *AchievementHandler) HandleUserAchievements(ctx context.Context, input *UserAchievementsInput) (*UserAchievementsOutput, error) {
	list, err := h.service.ListUserAchievements(ctx, input.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load achievements: " + err.Error())
	}
	return &UserAchievementsOutput{Body: list}, nil
}

type UserStatsOutput struct {
	Body achievement.Stats
}

func (h *AchievementHandler) HandleUserStats(ctx context.Context, input *UserAchievementsInput) (*UserStatsOutput, error) {
	stats, err := h.service.UserStats(ctx, input.UserID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load achievement stats: " + err.Error())
	}
	return &UserStatsOutput{Body: stats}, nil
}
