package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to a documented env var.
type Config struct {
	// Telegram
	BotToken       string `mapstructure:"BOT_TOKEN"`
	AllowedChatIDs string `mapstructure:"ALLOWED_CHAT_IDS"` // comma-separated; empty = open

	// Server
	Env      string `mapstructure:"APP_ENV"` // development | production
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Sessions
	SessionStore string `mapstructure:"SESSION_STORE"` // memory | redis
	RedisURL     string `mapstructure:"REDIS_URL"`

	// Chat
	PageSize int `mapstructure:"PAGE_SIZE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Sensible defaults for development
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("DATABASE_URL", "sqlite://bot.db")
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("PAGE_SIZE", 20)

	// Optional .env file for local development — does not fail if missing
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AllowedIDs parses ALLOWED_CHAT_IDS into chat ids, skipping blanks and
// anything non-numeric.
func (c *Config) AllowedIDs() []int64 {
	var ids []int64
	for _, part := range strings.Split(c.AllowedChatIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
