package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers the command and callback handlers on the bot instance.
// Plain messages reach Dispatch through the default handler.
func (h *Handler) Register(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	// every payload, structured or legacy, goes through one decoder
	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, h.HandleCallbackQuery)
}

// HandleCallbackQuery handles inline button presses.
func (h *Handler) HandleCallbackQuery(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.handleCallback(ctx, update.CallbackQuery)
}

// Dispatch routes private text and photo messages.
func (h *Handler) Dispatch(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat.Type != models.ChatTypePrivate {
		return
	}
	switch {
	case len(msg.Photo) > 0:
		h.handlePhoto(ctx, msg)
	case msg.Text != "" && !strings.HasPrefix(msg.Text, "/"):
		h.handleText(ctx, msg)
	}
}
