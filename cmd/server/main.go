package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ticketbook/achievement-engine/internal/achievement"
	"github.com/ticketbook/achievement-engine/internal/auth"
	"github.com/ticketbook/achievement-engine/internal/config"
	"github.com/ticketbook/achievement-engine/internal/database"
	"github.com/ticketbook/achievement-engine/internal/events"
	"github.com/ticketbook/achievement-engine/internal/handlers"
	"github.com/ticketbook/achievement-engine/internal/logger"
	"github.com/ticketbook/achievement-engine/internal/notification"
	"github.com/ticketbook/achievement-engine/internal/notifier"
	"github.com/ticketbook/achievement-engine/internal/social"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	if err := cfg.Validate(); err != nil {
		logg.Fatal("Invalid configuration", "error", err)
	}

	// Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		logg.Fatal("Failed to connect to database", "error", err)
	}

	// Optional notification sinks
	var streamer handlers.Streamer
	var dispatcherOpts []notification.Option
	dispatcherOpts = append(dispatcherOpts, notification.WithConcurrency(cfg.BroadcastConcurrency))

	if cfg.RedisAddr != "" {
		rdb, err := notifier.NewRedisClient(context.Background(), cfg.RedisAddr)
		if err != nil {
			logg.Warn("Redis publisher not initialized", "error", err)
		} else {
			defer rdb.Close()
			publisher := notifier.NewRedisPublisher(rdb, cfg.RedisChannelPrefix, logg)
			dispatcherOpts = append(dispatcherOpts, notification.WithPublisher(publisher))
			streamer = publisher
		}
	}

	session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
	if err != nil {
		logg.Warn("Discord notifier not initialized", "error", err)
	} else if session != nil && cfg.DiscordNotificationsChannelID != "" {
		dispatcherOpts = append(dispatcherOpts, notification.WithAnnouncer(notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)))
	}

	// Engine
	bus := events.NewInProcessBus(logg)
	registry := achievement.DefaultRegistry()
	ledger := achievement.NewLedger(db)
	evaluator := achievement.NewEvaluator(db, registry, achievement.NewAggregator(db), ledger, logg)
	evaluator.Subscribe(bus)

	store := notification.NewGormStore(db)
	dispatcher := notification.NewDispatcher(store, logg, dispatcherOpts...)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	notificationHandler := handlers.NewNotificationHandler(notification.NewInbox(store), dispatcher, authHandler)
	if streamer != nil {
		notificationHandler.WithStreamer(streamer, logg)
	}
	h := handlers.Handlers{
		Auth:         authHandler,
		Achievement:  handlers.NewAchievementHandler(achievement.NewService(registry, ledger)),
		Notification: notificationHandler,
		Social:       handlers.NewSocialHandler(social.NewService(db, bus, dispatcher, logg), authHandler),
	}

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, h)

	// Start Server
	logg.Info("Starting server", "port", cfg.Port, "achievements", registry.Len())
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		logg.Fatal("Failed to start server", "error", err)
	}
}
