package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/callback"
	"github.com/set-night/taskearn/internal/middleware"
)

// handleCallback answers every button press, then routes it. Admin-only
// payloads from anyone else are dropped silently.
func (h *Handler) handleCallback(ctx context.Context, q *models.CallbackQuery) {
	if _, err := h.sender.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		slog.Warn("answer callback", "error", err, "trace_id", middleware.GetTraceID(ctx))
	}

	p, err := callback.Decode(q.Data)
	if err != nil {
		slog.Debug("unknown callback payload", "data", q.Data, "user_id", q.From.ID)
		return
	}

	uid := q.From.ID
	if p.AdminOnly() && !h.cfg.IsAdmin(uid) {
		return
	}

	switch p.Kind {
	case callback.KindProof:
		switch p.Action {
		case callback.ActionDone:
			h.reply(ctx, uid, alreadyDoneText, nil)
		case callback.ActionSubmit:
			h.handleProofSubmit(ctx, uid, p.TaskID)
		case callback.ActionApprove:
			h.handleProofApprove(ctx, q, p.UserID, p.TaskID)
		case callback.ActionReject:
			h.handleProofReject(ctx, q, p.UserID, p.TaskID)
		}
	case callback.KindWithdraw:
		h.handleWithdrawDecision(ctx, q, p.UserID, p.Action == callback.ActionApprove)
	case callback.KindTask:
		h.handleTaskDelete(ctx, q, p.TaskID)
	case callback.KindAdmin:
		h.handleAdminAction(ctx, q, p.Action)
	}
}
