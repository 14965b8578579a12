package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/callback"
	"github.com/set-night/taskearn/internal/domain"
	tg "github.com/set-night/taskearn/internal/telegram"
)

func (h *Handler) handleWithdrawMenu(ctx context.Context, chatID, uid int64) {
	user, err := h.ledger.Get(ctx, uid)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		h.fail(ctx, chatID, err, "load user")
		return
	}

	if user == nil || !user.HasWallet() {
		if h.saveSession(ctx, chatID, domain.Session{UserID: uid, State: domain.StateWallet}) {
			h.reply(ctx, chatID, fmt.Sprintf("⚠ Your wallet is not set. Please send your %s wallet details first.", h.walletName()), nil)
		}
		return
	}

	if h.saveSession(ctx, chatID, domain.Session{UserID: uid, State: domain.StateWithdraw}) {
		h.reply(ctx, chatID, fmt.Sprintf("💳 Enter the amount to withdraw (minimum %d, your balance: %d):",
			h.withdraws.MinWithdraw(), user.Balance), nil)
	}
}

func withdrawDecisionKeyboard(uid int64) *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(tg.ButtonRow(
		tg.InlineButton("✅ Approve", callback.WithdrawApprove(uid).String()),
		tg.InlineButton("❌ Reject", callback.WithdrawReject(uid).String()),
	))
}

// handleWithdrawDecision approves or rejects the user's pending request.
// Nothing pending is a silent no-op.
func (h *Handler) handleWithdrawDecision(ctx context.Context, q *models.CallbackQuery, uid int64, approve bool) {
	decide, verb := h.withdraws.Reject, "rejected"
	if approve {
		decide, verb = h.withdraws.Approve, "approved"
	}

	w, err := decide(ctx, uid)
	switch {
	case errors.Is(err, domain.ErrWithdrawNotFound):
		return
	case err != nil:
		h.fail(ctx, q.From.ID, err, "decide withdraw")
		return
	}

	if approve {
		h.notify(ctx, uid, fmt.Sprintf("✅ Your withdrawal of %d coins has been approved!", w.Amount), nil)
		h.edit(ctx, q, "✅ Withdrawal approved", nil)
	} else {
		h.notify(ctx, uid, "❌ Your withdrawal was rejected!", nil)
		h.edit(ctx, q, "❌ Withdrawal rejected", nil)
	}
	h.tgLogger.LogWithdrawDecision(uid, w.Amount, strings.ToUpper(verb[:1])+verb[1:])
}
