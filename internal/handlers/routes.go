package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ticketbook/achievement-engine/internal/auth"
	"github.com/ticketbook/achievement-engine/internal/models"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Achievement  *AchievementHandler
	Notification *NotificationHandler
	Social       *SocialHandler
}

func APIConfig() huma.Config {
	config := huma.DefaultConfig("Ticketbook Achievement API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
	}
	return config
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	api := humachi.New(r, APIConfig())

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	RegisterOperations(api, h)
	return api
}

func protected(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}

func RegisterOperations(api huma.API, h Handlers) {
	api.UseMiddleware(h.Auth.Middleware(api))

	// Achievements
	huma.Get(api, "/achievements", h.Achievement.HandleListDefinitions)
	huma.Get(api, "/users/{id}/achievements", h.Achievement.HandleUserAchievements)
	huma.Get(api, "/users/{id}/achievements/stats", h.Achievement.HandleUserStats)

	// Notifications
	huma.Get(api, "/notifications", h.Notification.HandleList, protected)
	huma.Get(api, "/notifications/unread-count", h.Notification.HandleUnreadCount, protected)
	huma.Patch(api, "/notifications/read-all", h.Notification.HandleMarkAllRead, protected)
	huma.Patch(api, "/notifications/{id}/read", h.Notification.HandleMarkRead, protected)
	huma.Delete(api, "/notifications/{id}", h.Notification.HandleDelete, protected)
	huma.Post(api, "/admin/notifications/broadcast", h.Notification.HandleBroadcast, protected)
	if h.Notification.Streaming() {
		op := huma.Operation{
			OperationID: "stream-notifications",
			Method:      http.MethodGet,
			Path:        "/notifications/stream",
			Summary:     "Stream notifications",
		}
		protected(&op)
		sse.Register(api, op, map[string]any{
			"notification": models.Notification{},
		}, h.Notification.HandleStream)
	}

	// Producers
	huma.Post(api, "/tickets/{id}/collect", h.Social.HandleCollectTicket, protected)
	huma.Post(api, "/users/{id}/like", h.Social.HandleLike, protected)
	huma.Post(api, "/users/{id}/follow", h.Social.HandleFollow, protected)
}
