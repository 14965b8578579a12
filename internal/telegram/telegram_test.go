package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*bot.SendMessageParams
	err  error
}

func (r *recordingSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, p)
	return &models.Message{}, r.err
}

func (r *recordingSender) SendPhoto(context.Context, *bot.SendPhotoParams) (*models.Message, error) {
	return &models.Message{}, nil
}

func (r *recordingSender) EditMessageText(context.Context, *bot.EditMessageTextParams) (*models.Message, error) {
	return &models.Message{}, nil
}

func (r *recordingSender) EditMessageCaption(context.Context, *bot.EditMessageCaptionParams) (*models.Message, error) {
	return &models.Message{}, nil
}

func (r *recordingSender) AnswerCallbackQuery(context.Context, *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func TestMainMenu(t *testing.T) {
	user := MainMenu(false)
	admin := MainMenu(true)
	assert.Len(t, admin.Keyboard, len(user.Keyboard)+1)
	assert.True(t, user.ResizeKeyboard)

	var labels []string
	for _, row := range admin.Keyboard {
		for _, b := range row {
			labels = append(labels, b.Text)
			assert.True(t, IsMenuLabel(b.Text), b.Text)
		}
	}
	assert.Contains(t, labels, MenuAdminPanel)
	assert.False(t, IsMenuLabel("Dashboard"))
	assert.False(t, IsMenuLabel(" "+MenuDashboard))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := strings.Repeat("a", 8) + "\n" + strings.Repeat("b", 8)
	parts := SplitMessage(text, 10)
	require.Len(t, parts, 2)
	assert.Equal(t, strings.Repeat("a", 8)+"\n", parts[0])
	assert.Equal(t, strings.Repeat("b", 8), parts[1])

	long := strings.Repeat("я", 25)
	parts = SplitMessage(long, 10)
	require.Len(t, parts, 3)
	assert.Equal(t, long, strings.Join(parts, ""))
}

func TestSendLongMessageMarkupOnLastPart(t *testing.T) {
	s := &recordingSender{}
	text := strings.Repeat("x", MaxMessageLen+10)
	kb := InlineKeyboard(ButtonRow(InlineButton("ok", "admin:users")))

	require.NoError(t, SendLongMessage(context.Background(), s, 5, text, kb))
	require.Len(t, s.sent, 2)
	assert.Nil(t, s.sent[0].ReplyMarkup)
	assert.Equal(t, kb, s.sent[1].ReplyMarkup)
}

func TestLargestPhoto(t *testing.T) {
	assert.Equal(t, "", LargestPhoto(nil))
	assert.Equal(t, "big", LargestPhoto([]models.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "big", Width: 1280, Height: 960},
		{FileID: "mid", Width: 320, Height: 240},
	}))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `john\_doe \*x\* \[y]`, EscapeMarkdown("john_doe *x* [y]"))
}

func TestTelegramLogger(t *testing.T) {
	s := &recordingSender{}

	NewTelegramLogger(s, 0).LogTaskReward(1, "t", 10)
	assert.Empty(t, s.sent)

	var nilLogger *TelegramLogger
	nilLogger.LogError(errors.New("x"), "ctx")

	l := NewTelegramLogger(s, -100)
	ref := int64(7)
	l.LogRegistration(8, "Ann_B", "ann", &ref)
	require.Len(t, s.sent, 1)
	assert.Equal(t, int64(-100), s.sent[0].ChatID)
	assert.Contains(t, s.sent[0].Text, `Ann\_B`)
	assert.Contains(t, s.sent[0].Text, "`7`")

	// send failures are only logged
	s.err = errors.New("blocked")
	l.LogWithdrawRequest(8, 600, "opay 1")
	assert.Len(t, s.sent, 2)
}

func TestTelegramLoggerAttachedLater(t *testing.T) {
	l := NewTelegramLogger(nil, -100)
	l.LogTaskReward(1, "t", 10)

	s := &recordingSender{}
	l.SetSender(s)
	l.LogTaskReward(1, "t", 10)
	require.Len(t, s.sent, 1)
	assert.Contains(t, s.sent[0].Text, "10")
}
