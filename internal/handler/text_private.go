package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/service"
	tg "github.com/set-night/taskearn/internal/telegram"
)

// handleText drives the conversation state machine. A menu label always
// abandons the flow in progress.
func (h *Handler) handleText(ctx context.Context, msg *models.Message) {
	uid := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	sess, err := h.sessions.Get(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "load session")
		return
	}

	if tg.IsMenuLabel(text) {
		if !sess.Idle() {
			if err := h.sessions.Clear(ctx, uid); err != nil {
				h.fail(ctx, chatID, err, "reset session")
				return
			}
		}
		h.handleMenu(ctx, msg, text)
		return
	}

	switch {
	case sess.State.InTaskWizard():
		if !h.cfg.IsAdmin(uid) {
			h.clearSession(ctx, chatID, uid)
			return
		}
		h.handleTaskWizard(ctx, chatID, sess, text)
	case sess.State == domain.StateWallet:
		h.handleWalletInput(ctx, chatID, uid, text)
	case sess.State == domain.StateWithdraw:
		h.handleWithdrawInput(ctx, chatID, uid, text)
	case sess.State == domain.StateSendProof:
		h.reply(ctx, chatID, "📸 Please send your screenshot as a photo, or pick a menu option to cancel.", nil)
	default:
		h.replyMenu(ctx, chatID, "Please choose an option from the menu below.")
	}
}

func (h *Handler) saveSession(ctx context.Context, chatID int64, sess domain.Session) bool {
	if err := h.sessions.Save(ctx, sess); err != nil {
		h.fail(ctx, chatID, err, "save session")
		return false
	}
	return true
}

func (h *Handler) clearSession(ctx context.Context, chatID, uid int64) bool {
	if err := h.sessions.Clear(ctx, uid); err != nil {
		h.fail(ctx, chatID, err, "clear session")
		return false
	}
	return true
}

func (h *Handler) handleWalletInput(ctx context.Context, chatID, uid int64, text string) {
	err := h.ledger.SetWallet(ctx, uid, text)
	switch {
	case errors.Is(err, domain.ErrInvalidWallet):
		h.replyMenu(ctx, chatID, fmt.Sprintf("❌ Only %s wallet allowed. Send again.", h.walletName()))
		return
	case err != nil:
		h.fail(ctx, chatID, err, "set wallet")
		return
	}

	if !h.clearSession(ctx, chatID, uid) {
		return
	}
	h.replyMenu(ctx, chatID, "✅ Wallet saved successfully.")
}

func (h *Handler) handleWithdrawInput(ctx context.Context, chatID, uid int64, text string) {
	amount, err := service.ParseAmount(text)
	if err != nil {
		h.reply(ctx, chatID, "❌ Enter numbers only", nil)
		return
	}

	w, err := h.withdraws.Request(ctx, uid, amount)
	var balanceErr *domain.InsufficientBalanceError
	switch {
	case errors.Is(err, domain.ErrBelowMinimum):
		h.reply(ctx, chatID, fmt.Sprintf("❌ Minimum withdraw amount is %d", h.withdraws.MinWithdraw()), nil)
		return
	case errors.As(err, &balanceErr):
		h.reply(ctx, chatID, fmt.Sprintf("❌ Insufficient balance (%d)", balanceErr.Balance), nil)
		return
	case errors.Is(err, domain.ErrWalletNotSet):
		h.reply(ctx, chatID, fmt.Sprintf("⚠ Your wallet is not set. Use %s first.", tg.MenuSetWallet), nil)
		return
	case errors.Is(err, domain.ErrWithdrawPending):
		h.reply(ctx, chatID, "⚠ You already have a pending withdraw request.", nil)
		return
	case err != nil:
		h.fail(ctx, chatID, err, "request withdraw")
		return
	}

	if !h.clearSession(ctx, chatID, uid) {
		return
	}

	h.notify(ctx, h.cfg.AdminID,
		fmt.Sprintf("💰 Withdraw Request\nUser: %d\nAmount: %d\nWallet: %s", uid, w.Amount, w.Wallet),
		withdrawDecisionKeyboard(uid))
	h.tgLogger.LogWithdrawRequest(uid, w.Amount, w.Wallet)

	h.replyMenu(ctx, chatID, fmt.Sprintf("⏳ Withdraw request of %d coins submitted.\n✅ Waiting for admin approval.", w.Amount))
}

// handleTaskWizard walks the admin through title, rule, link and reward.
func (h *Handler) handleTaskWizard(ctx context.Context, chatID int64, sess domain.Session, text string) {
	switch sess.State {
	case domain.StateTaskTitle:
		sess.Draft = domain.TaskDraft{Title: text}
		sess.State = domain.StateTaskRule
		if h.saveSession(ctx, chatID, sess) {
			h.reply(ctx, chatID, "✏️ Send TASK RULE", nil)
		}
	case domain.StateTaskRule:
		sess.Draft.Rule = text
		sess.State = domain.StateTaskLink
		if h.saveSession(ctx, chatID, sess) {
			h.reply(ctx, chatID, "✏️ Send TASK LINK (URL)", nil)
		}
	case domain.StateTaskLink:
		sess.Draft.Link = text
		sess.State = domain.StateTaskReward
		if h.saveSession(ctx, chatID, sess) {
			h.reply(ctx, chatID, "✏️ Send TASK REWARD (number)", nil)
		}
	case domain.StateTaskReward:
		reward, err := service.ParseAmount(text)
		if err != nil {
			h.reply(ctx, chatID, "❌ Reward must be a number. Send again.", nil)
			return
		}
		task, err := h.tasks.Create(ctx, sess.Draft.Title, sess.Draft.Rule, sess.Draft.Link, reward)
		if err != nil {
			h.fail(ctx, chatID, err, "create task")
			return
		}
		if !h.clearSession(ctx, chatID, sess.UserID) {
			return
		}
		h.replyMenu(ctx, chatID, fmt.Sprintf("✅ Task '%s' added successfully!", task.Title))
	}
}

func (h *Handler) walletName() string {
	return strings.ToUpper(h.ledger.WalletPrefix())
}
