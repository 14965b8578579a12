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

func (h *Handler) handleAdminPanel(ctx context.Context, chatID int64) {
	kb := tg.InlineKeyboard(
		tg.ButtonRow(tg.InlineButton("➕ Add Task", callback.Admin(callback.ActionAddTask).String())),
		tg.ButtonRow(tg.InlineButton("🗑 Remove Task", callback.Admin(callback.ActionRemoveTask).String())),
		tg.ButtonRow(tg.InlineButton("👥 Total Users", callback.Admin(callback.ActionUsers).String())),
		tg.ButtonRow(tg.InlineButton("💰 Pending Withdrawals", callback.Admin(callback.ActionWithdraws).String())),
	)
	h.reply(ctx, chatID, "🛠 Admin Panel", kb)
}

func (h *Handler) handleAdminAction(ctx context.Context, q *models.CallbackQuery, action callback.Action) {
	adminID := q.From.ID

	switch action {
	case callback.ActionAddTask:
		sess := domain.Session{UserID: adminID, State: domain.StateTaskTitle}
		if h.saveSession(ctx, adminID, sess) {
			h.edit(ctx, q, "✏️ Send TASK TITLE", nil)
		}

	case callback.ActionUsers:
		n, err := h.ledger.CountUsers(ctx)
		if err != nil {
			h.fail(ctx, adminID, err, "count users")
			return
		}
		h.edit(ctx, q, fmt.Sprintf("👥 Total users: %d", n), nil)

	case callback.ActionWithdraws:
		pending, err := h.withdraws.Pending(ctx)
		if err != nil {
			h.fail(ctx, adminID, err, "list pending withdraws")
			return
		}
		if len(pending) == 0 {
			h.edit(ctx, q, "No pending withdraws", nil)
			return
		}
		var sb strings.Builder
		sb.WriteString("Pending Withdrawals:\n")
		for _, w := range pending {
			sb.WriteString(fmt.Sprintf("User: %d, Amount: %d, Wallet: %s\n", w.UserID, w.Amount, w.Wallet))
		}
		h.edit(ctx, q, sb.String(), nil)

	case callback.ActionRemoveTask:
		tasks, err := h.tasks.List(ctx)
		if err != nil {
			h.fail(ctx, adminID, err, "list tasks")
			return
		}
		if len(tasks) == 0 {
			h.edit(ctx, q, "No tasks to remove", nil)
			return
		}
		rows := make([][]models.InlineKeyboardButton, 0, len(tasks))
		for _, t := range tasks {
			rows = append(rows, tg.ButtonRow(tg.InlineButton(
				fmt.Sprintf("%d - %s", t.ID, t.Title), callback.TaskDelete(t.ID).String())))
		}
		h.edit(ctx, q, "Select a task to remove:", tg.InlineKeyboard(rows...))
	}
}

func (h *Handler) handleTaskDelete(ctx context.Context, q *models.CallbackQuery, taskID int64) {
	err := h.tasks.Remove(ctx, taskID)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		h.edit(ctx, q, fmt.Sprintf("⚠ Task %d was already removed", taskID), nil)
	case err != nil:
		h.fail(ctx, q.From.ID, err, "remove task")
	default:
		h.edit(ctx, q, fmt.Sprintf("✅ Task %d removed successfully", taskID), nil)
	}
}
