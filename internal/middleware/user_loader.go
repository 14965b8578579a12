package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/service"
	"github.com/set-night/taskearn/internal/telegram"
)

type ctxKey string

const (
	UserKey    ctxKey = "user"
	NewUserKey ctxKey = "new_user"
	TraceIDKey ctxKey = "trace_id"
)

// GetUser extracts user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// IsNewUser reports whether the current update registered the user.
func IsNewUser(ctx context.Context) bool {
	v, _ := ctx.Value(NewUserKey).(bool)
	return v
}

// StartPayload returns the argument of a "/start <payload>" command.
func StartPayload(text string) string {
	cmd, payload, _ := strings.Cut(strings.TrimSpace(text), " ")
	if cmd != "/start" && !strings.HasPrefix(cmd, "/start@") {
		return ""
	}
	return strings.TrimSpace(payload)
}

// UserLoader returns middleware that registers the sender on first contact
// and loads the user into context. A /start payload in a private chat names
// the referrer; elsewhere it is ignored.
func UserLoader(ledger *service.LedgerService, tgLogger *telegram.TelegramLogger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			src := sourceOf(update)
			if src.from == nil || src.from.IsBot {
				next(ctx, b, update)
				return
			}

			var referrer *int64
			if src.chatType == models.ChatTypePrivate {
				referrer = service.ParseReferrer(StartPayload(src.text))
			}

			user, created, err := ledger.Register(ctx, service.RegisterParams{
				ID:         src.from.ID,
				FirstName:  src.from.FirstName,
				Username:   src.from.Username,
				ReferrerID: referrer,
			})
			if err != nil {
				slog.Error("failed to register user", "error", err, "user_id", src.from.ID, "trace_id", GetTraceID(ctx))
				tgLogger.LogError(err, "register user")
				next(ctx, b, update)
				return
			}

			if created {
				tgLogger.LogRegistration(user.ID, user.FirstName, user.Username, user.ReferredBy)
				if user.ReferredBy != nil {
					tgLogger.LogReferralBonus(*user.ReferredBy, user.ID, ledger.ReferralBonus())
				}
			}

			ctx = context.WithValue(ctx, UserKey, user)
			ctx = context.WithValue(ctx, NewUserKey, created)
			next(ctx, b, update)
		}
	}
}
