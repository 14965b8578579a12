package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	redis "github.com/redis/go-redis/v9"

	"github.com/set-night/taskearn/internal/metrics"
	"github.com/set-night/taskearn/internal/repository"
)

// Limiter counts hits per chat in the current fixed window and returns the
// count including this hit.
type Limiter interface {
	Hit(ctx context.Context, chatID int64) (int64, error)
}

// PostgresLimiter keeps counters in the rate_limits table.
type PostgresLimiter struct {
	queries *repository.Queries
}

func NewPostgresLimiter(queries *repository.Queries) *PostgresLimiter {
	return &PostgresLimiter{queries: queries}
}

func (l *PostgresLimiter) Hit(ctx context.Context, chatID int64) (int64, error) {
	n, err := l.queries.CheckAndIncrementRateLimit(ctx, chatID)
	return int64(n), err
}

// RedisLimiter is a fixed-window limiter using INCR/EXPIRE.
// key format: rl:<window_seconds>:<chat_id>
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, window: window}
}

func (l *RedisLimiter) Hit(ctx context.Context, chatID int64) (int64, error) {
	key := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + strconv.FormatInt(chatID, 10)
	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return val, err
		}
	}
	return val, nil
}

// RateLimit returns middleware that drops messages above limit per window.
// Limiter errors let the update through.
func RateLimit(limiter Limiter, limit int) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Only rate limit messages (not callbacks or other updates)
			if update.Message == nil || limit <= 0 {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID

			count, err := limiter.Hit(ctx, chatID)
			if err != nil {
				slog.Error("rate limit check failed", "error", err, "chat_id", chatID)
				next(ctx, b, update)
				return
			}

			if count > int64(limit) {
				metrics.RateLimited.Inc()
				slog.Debug("rate limited", "chat_id", chatID, "count", count, "limit", limit)
				// warn once per window
				if count == int64(limit)+1 && b != nil {
					b.SendMessage(ctx, &bot.SendMessageParams{
						ChatID: chatID,
						Text:   "⏳ Too many messages. Please wait a minute.",
					})
				}
				return
			}

			next(ctx, b, update)
		}
	}
}
