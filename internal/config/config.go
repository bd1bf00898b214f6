package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabaseDriver                string `mapstructure:"DATABASE_DRIVER"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	DatabaseURL                   string `mapstructure:"DATABASE_URL"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	LogMode                       string `mapstructure:"LOG_MODE"`
	BroadcastConcurrency          int    `mapstructure:"BROADCAST_CONCURRENCY"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	RedisAddr                     string `mapstructure:"REDIS_ADDR"`
	RedisChannelPrefix            string `mapstructure:"REDIS_CHANNEL_PREFIX"`
}

func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.BindEnv("DATABASE_URL")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("DISCORD_BOT_TOKEN")
	v.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	v.BindEnv("REDIS_ADDR")

	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	if config.BroadcastConcurrency <= 0 {
		config.BroadcastConcurrency = 1
	}

	return &config
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_PATH", "ticketbook.db")
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("BROADCAST_CONCURRENCY", 8)
	v.SetDefault("REDIS_CHANNEL_PREFIX", "notifications")
}
