package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/config"
)

// TelegramLogger mirrors notable events into a log chat. A zero chat id
// disables it.
type TelegramLogger struct {
	sender Sender
	chatID int64
}

func NewTelegramLogger(s Sender, chatID int64) *TelegramLogger {
	return &TelegramLogger{sender: s, chatID: chatID}
}

// SetSender attaches the bot once it exists. Must be called before the bot
// starts processing updates.
func (l *TelegramLogger) SetSender(s Sender) {
	l.sender = s
}

type LogType string

const (
	LogTypeError            LogType = "error"
	LogTypeRegistration     LogType = "registration"
	LogTypeReferralBonus    LogType = "referralBonus"
	LogTypeWithdrawRequest  LogType = "withdrawRequest"
	LogTypeWithdrawDecision LogType = "withdrawDecision"
	LogTypeTaskReward       LogType = "taskReward"
)

func (l *TelegramLogger) Log(logType LogType, message string) {
	if l == nil || l.chatID == 0 || l.sender == nil {
		return
	}

	if len([]rune(message)) > MaxMessageLen {
		message = string([]rune(message)[:MaxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.NotifyTimeout)
	defer cancel()

	_, err := l.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    l.chatID,
		Text:      message,
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		slog.Error("failed to send telegram log", "type", logType, "error", err)
	}
}

func (l *TelegramLogger) LogError(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		EscapeMarkdown(context), err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *TelegramLogger) LogRegistration(userID int64, name, username string, referredBy *int64) {
	msg := fmt.Sprintf("👤 *New Registration*\n\n*ID:* `%d`\n*Name:* %s", userID, EscapeMarkdown(name))
	if username != "" {
		msg += fmt.Sprintf("\n*Username:* @%s", EscapeMarkdown(username))
	}
	if referredBy != nil {
		msg += fmt.Sprintf("\n*Referred by:* `%d`", *referredBy)
	}
	l.Log(LogTypeRegistration, msg)
}

func (l *TelegramLogger) LogReferralBonus(referrerID, userID, bonus int64) {
	msg := fmt.Sprintf("🎉 *Referral Bonus*\n\n*Referrer:* `%d`\n*New user:* `%d`\n*Bonus:* %d",
		referrerID, userID, bonus)
	l.Log(LogTypeReferralBonus, msg)
}

func (l *TelegramLogger) LogWithdrawRequest(userID, amount int64, wallet string) {
	msg := fmt.Sprintf("💰 *Withdraw Request*\n\n*User:* `%d`\n*Amount:* %d\n*Wallet:* %s",
		userID, amount, EscapeMarkdown(wallet))
	l.Log(LogTypeWithdrawRequest, msg)
}

func (l *TelegramLogger) LogWithdrawDecision(userID, amount int64, status string) {
	msg := fmt.Sprintf("🏦 *Withdraw %s*\n\n*User:* `%d`\n*Amount:* %d", status, userID, amount)
	l.Log(LogTypeWithdrawDecision, msg)
}

func (l *TelegramLogger) LogTaskReward(userID int64, taskTitle string, reward int64) {
	msg := fmt.Sprintf("✅ *Task Reward*\n\n*User:* `%d`\n*Task:* %s\n*Reward:* %d",
		userID, EscapeMarkdown(taskTitle), reward)
	l.Log(LogTypeTaskReward, msg)
}
