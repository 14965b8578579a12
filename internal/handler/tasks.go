package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/callback"
	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/middleware"
	"github.com/set-night/taskearn/internal/service"
	tg "github.com/set-night/taskearn/internal/telegram"
)

const alreadyDoneText = "⚠ You have already completed this task or submitted proof!"

func (h *Handler) handleTasks(ctx context.Context, chatID, uid int64) {
	tasks, err := h.tasks.ListForUser(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "list tasks")
		return
	}
	if len(tasks) == 0 {
		h.replyMenu(ctx, chatID, "No tasks available")
		return
	}

	for _, t := range tasks {
		h.reply(ctx, chatID, taskText(t), taskKeyboard(t))
	}
}

func taskText(t service.UserTask) string {
	text := fmt.Sprintf("📌 %s\n📜 %s\n💰 %d", t.Title, t.Rule, t.Reward)
	if !isURL(t.Link) && t.Link != "" {
		text += "\n🔗 " + t.Link
	}
	switch t.Status {
	case domain.TaskStatusCompleted:
		text += "\n✅ Already completed"
	case domain.TaskStatusPending:
		text += "\n⏳ Proof under review"
	}
	return text
}

func taskKeyboard(t service.UserTask) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	if isURL(t.Link) {
		rows = append(rows, tg.ButtonRow(tg.URLButton("🔗 Visit Task", t.Link)))
	}
	proof := callback.ProofSubmit(t.ID)
	if t.Status != domain.TaskStatusOpen {
		proof = callback.ProofDone()
	}
	rows = append(rows, tg.ButtonRow(tg.InlineButton("📸 Submit Proof", proof.String())))
	return tg.InlineKeyboard(rows...)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func proofDecisionKeyboard(uid, taskID int64) *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(tg.ButtonRow(
		tg.InlineButton("✅ Approve", callback.ProofApprove(uid, taskID).String()),
		tg.InlineButton("❌ Reject", callback.ProofReject(uid, taskID).String()),
	))
}

// handleProofSubmit puts the user in send_proof state for the task.
func (h *Handler) handleProofSubmit(ctx context.Context, uid, taskID int64) {
	if _, err := h.tasks.Get(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			h.reply(ctx, uid, "⚠ This task is no longer available.", nil)
			return
		}
		h.fail(ctx, uid, err, "get task")
		return
	}
	status, err := h.tasks.Status(ctx, uid, taskID)
	if err != nil {
		h.fail(ctx, uid, err, "task status")
		return
	}
	if status != domain.TaskStatusOpen {
		h.reply(ctx, uid, alreadyDoneText, nil)
		return
	}

	if h.saveSession(ctx, uid, domain.Session{UserID: uid, State: domain.StateSendProof, TaskID: taskID}) {
		h.reply(ctx, uid, "📸 Please send your screenshot proof", nil)
	}
}

// handlePhoto consumes the pending task id of a user in send_proof state and
// forwards the photo to the admin. Photos in any other state are ignored.
func (h *Handler) handlePhoto(ctx context.Context, msg *models.Message) {
	uid := msg.From.ID
	chatID := msg.Chat.ID

	sess, err := h.sessions.Get(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "load session")
		return
	}
	if sess.State != domain.StateSendProof {
		return
	}

	taskID := sess.TaskID
	fileID := tg.LargestPhoto(msg.Photo)

	err = h.tasks.SubmitProof(ctx, uid, taskID, fileID)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		if h.clearSession(ctx, chatID, uid) {
			h.replyMenu(ctx, chatID, "⚠ This task is no longer available.")
		}
		return
	case errors.Is(err, domain.ErrTaskAlreadyDone):
		if h.clearSession(ctx, chatID, uid) {
			h.replyMenu(ctx, chatID, alreadyDoneText)
		}
		return
	case err != nil:
		h.fail(ctx, chatID, err, "submit proof")
		return
	}

	if !h.clearSession(ctx, chatID, uid) {
		return
	}

	_, err = h.sender.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      h.cfg.AdminID,
		Photo:       &models.InputFileString{Data: fileID},
		Caption:     fmt.Sprintf("📸 Proof Submitted\nUser: %d\nTask ID: %d", uid, taskID),
		ReplyMarkup: proofDecisionKeyboard(uid, taskID),
	})
	if err != nil {
		slog.Error("forward proof to admin", "error", err, "user_id", uid, "task_id", taskID, "trace_id", middleware.GetTraceID(ctx))
		h.tgLogger.LogError(err, "forward proof to admin")
	}

	h.replyMenu(ctx, chatID, "✅ Proof sent for review")
}

func (h *Handler) handleProofApprove(ctx context.Context, q *models.CallbackQuery, uid, taskID int64) {
	task, credited, err := h.tasks.ApproveProof(ctx, uid, taskID)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		h.editCaption(ctx, q, "⚠ Task no longer exists")
		return
	case err != nil:
		h.fail(ctx, q.From.ID, err, "approve proof")
		return
	}

	if !credited {
		h.editCaption(ctx, q, "ℹ Task was already rewarded")
		return
	}

	h.notify(ctx, uid, fmt.Sprintf("✅ Your task proof has been approved! +%d coins", task.Reward), nil)
	h.tgLogger.LogTaskReward(uid, task.Title, task.Reward)
	h.editCaption(ctx, q, "✅ Proof approved")
}

func (h *Handler) handleProofReject(ctx context.Context, q *models.CallbackQuery, uid, taskID int64) {
	err := h.tasks.RejectProof(ctx, uid, taskID)
	switch {
	case errors.Is(err, domain.ErrProofNotFound):
		return
	case err != nil:
		h.fail(ctx, q.From.ID, err, "reject proof")
		return
	}

	h.notify(ctx, uid, "❌ Your task proof was rejected.", nil)
	h.editCaption(ctx, q, "❌ Proof rejected")
}
