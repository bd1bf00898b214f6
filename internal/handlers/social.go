package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ticketbook/achievement-engine/internal/auth"
	"github.com/ticketbook/achievement-engine/internal/social"
)

type SocialHandler struct {
	service     *social.Service
	authHandler *auth.AuthHandler
}

func NewSocialHandler(service *social.Service, authHandler *auth.AuthHandler) *SocialHandler {
	return &SocialHandler{service: service, authHandler: authHandler}
}

type TargetIDInput struct {
	ID uint `path:"id"`
}

type ActionResponse struct {
	Body struct {
		Created bool `json:"created"`
	}
}

func actionError(err error) error {
	switch {
	case errors.Is(err, social.ErrUserNotFound):
		return huma.Error404NotFound("User not found")
	case errors.Is(err, social.ErrSelfAction):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}

func (h *SocialHandler) run(ctx context.Context, action func(userID uint) (bool, error)) (*ActionResponse, error) {
	userID, err := h.authHandler.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	created, err := action(userID)
	if err != nil {
		return nil, actionError(err)
	}
	res := &ActionResponse{}
	res.Body.Created = created
	return res, nil
}

func (h *SocialHandler) HandleCollectTicket(ctx context.Context, input *TargetIDInput) (*ActionResponse, error) {
	return h.run(ctx, func(userID uint) (bool, error) {
		return h.service.CollectTicket(ctx, userID, input.ID)
	})
}

func (h *SocialHandler) HandleLike(ctx context.Context, input *TargetIDInput) (*ActionResponse, error) {
	return h.run(ctx, func(userID uint) (bool, error) {
		return h.service.Like(ctx, userID, input.ID)
	})
}

func (h *SocialHandler) HandleFollow(ctx context.Context, input *TargetIDInput) (*ActionResponse, error) {
	return h.run(ctx, func(userID uint) (bool, error) {
		return h.service.Follow(ctx, userID, input.ID)
	})
}
