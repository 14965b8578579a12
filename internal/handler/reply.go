package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/middleware"
	"github.com/set-night/taskearn/internal/telegram"
)

const genericFailure = "❌ Something went wrong. Please try again later."

func (h *Handler) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := h.sender.SendMessage(ctx, params); err != nil {
		slog.Error("send message", "error", err, "chat_id", chatID, "trace_id", middleware.GetTraceID(ctx))
	}
}

func (h *Handler) replyMenu(ctx context.Context, chatID int64, text string) {
	h.reply(ctx, chatID, text, telegram.MainMenu(h.cfg.IsAdmin(chatID)))
}

// fail logs an unexpected error and tells the user something went wrong.
func (h *Handler) fail(ctx context.Context, chatID int64, err error, op string) {
	slog.Error(op, "error", err, "chat_id", chatID, "trace_id", middleware.GetTraceID(ctx))
	h.tgLogger.LogError(err, op)
	h.reply(ctx, chatID, genericFailure, nil)
}

// edit replaces the text of the message the callback came from, or sends a
// new message when that message is no longer accessible.
func (h *Handler) edit(ctx context.Context, q *models.CallbackQuery, text string, markup models.ReplyMarkup) {
	msg := q.Message.Message
	if msg == nil {
		h.reply(ctx, q.From.ID, text, markup)
		return
	}
	if err := telegram.EditText(ctx, h.sender, msg.Chat.ID, msg.ID, text, markup); err != nil {
		slog.Error("edit message", "error", err, "chat_id", msg.Chat.ID, "trace_id", middleware.GetTraceID(ctx))
	}
}

func (h *Handler) editCaption(ctx context.Context, q *models.CallbackQuery, caption string) {
	msg := q.Message.Message
	if msg == nil {
		h.reply(ctx, q.From.ID, caption, nil)
		return
	}
	_, err := h.sender.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Caption:   caption,
	})
	if err != nil {
		slog.Error("edit caption", "error", err, "chat_id", msg.Chat.ID, "trace_id", middleware.GetTraceID(ctx))
	}
}

func (h *Handler) notify(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	telegram.Notify(ctx, h.sender, chatID, text, markup)
}
