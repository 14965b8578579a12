package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	BotUsername string `env:"BOT_USERNAME"`

	// Admin
	AdminID int64 `env:"ADMIN_ID,required"`

	// Economy
	MinWithdraw   int64  `env:"MIN_WITHDRAW" envDefault:"500"`
	ReferralBonus int64  `env:"REFERRAL_BONUS" envDefault:"500"`
	WalletPrefix  string `env:"WALLET_PREFIX" envDefault:"opay"`
	ContactURL    string `env:"CONTACT_URL"`

	// Conversation sessions: postgres, redis or memory
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"postgres"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Rate limit (updates per chat per minute)
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	// Ops HTTP server, empty disables it
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram event log chat
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
}

// Load reads the configuration from the environment, after merging an
// optional .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case SessionBackendPostgres, SessionBackendMemory:
	case SessionBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.MinWithdraw <= 0 {
		return fmt.Errorf("MIN_WITHDRAW must be positive, got %d", c.MinWithdraw)
	}
	if c.ReferralBonus < 0 {
		return fmt.Errorf("REFERRAL_BONUS must not be negative, got %d", c.ReferralBonus)
	}
	return nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	return telegramID == c.AdminID
}
