package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/middleware"
)

func (h *Handler) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if update.Message.Chat.Type != models.ChatTypePrivate {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	// the referral itself was credited by UserLoader
	if user := middleware.GetUser(ctx); user != nil && middleware.IsNewUser(ctx) && user.ReferredBy != nil {
		h.notify(ctx, *user.ReferredBy, fmt.Sprintf(
			"🎉 You earned %d coins! Your friend %s joined.", h.ledger.ReferralBonus(), from.FirstName), nil)
	}

	var sb strings.Builder
	sb.WriteString("🌟✨🚀 WELCOME TO TASK EARN BOT 🚀✨🌟\n\n")
	sb.WriteString(fmt.Sprintf("Hello, %s 👋\n\n", from.FirstName))
	sb.WriteString("Complete tasks, send a screenshot as proof and earn coins.\n\n")
	sb.WriteString("⚡ Pro Tip: Use your referral link to earn bonus coins faster!\n")
	if h.cfg.ContactURL != "" {
		sb.WriteString(fmt.Sprintf("\n📱 Contact Admin: %s\n", h.cfg.ContactURL))
	}
	sb.WriteString("\n🌈 Let the rewards begin! 🎁🎉")

	h.replyMenu(ctx, chatID, sb.String())
}
