package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/set-night/taskearn/internal/metrics"
)

// GetTraceID returns the id Logging assigned to the current update.
func GetTraceID(ctx context.Context) string {
	id, _ := ctx.Value(TraceIDKey).(string)
	return id
}

// Logging returns middleware that tags each update with a trace id and logs
// its processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			traceID := uuid.NewString()
			ctx = context.WithValue(ctx, TraceIDKey, traceID)

			src := sourceOf(update)
			metrics.Updates.WithLabelValues(src.kind).Inc()

			next(ctx, b, update)

			slog.Debug("update processed",
				"trace_id", traceID,
				"type", src.kind,
				"chat_id", src.chatID,
				"user_id", src.userID(),
				"duration", time.Since(start),
			)
		}
	}
}

type source struct {
	kind     string
	chatID   int64
	chatType models.ChatType
	from     *models.User
	text     string
}

func (s source) userID() int64 {
	if s.from == nil {
		return 0
	}
	return s.from.ID
}

func sourceOf(update *models.Update) source {
	switch {
	case update.Message != nil:
		return source{
			kind:     "message",
			chatID:   update.Message.Chat.ID,
			chatType: update.Message.Chat.Type,
			from:     update.Message.From,
			text:     update.Message.Text,
		}
	case update.CallbackQuery != nil:
		src := source{kind: "callback_query", from: &update.CallbackQuery.From}
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			src.chatID = msg.Chat.ID
		}
		return src
	default:
		return source{kind: "unknown"}
	}
}
