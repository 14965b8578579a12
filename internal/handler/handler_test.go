package handler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/set-night/taskearn/internal/config"
	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/middleware"
	"github.com/set-night/taskearn/internal/repository/repotest"
	"github.com/set-night/taskearn/internal/service"
	"github.com/set-night/taskearn/internal/session"
	tg "github.com/set-night/taskearn/internal/telegram"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	adminID = int64(1)
	userID  = int64(2)
)

type sentMessage struct {
	chatID int64
	text   string
	markup models.ReplyMarkup
}

type fakeSender struct {
	mu       sync.Mutex
	messages []sentMessage
	photos   []*bot.SendPhotoParams
	edits    []*bot.EditMessageTextParams
	captions []*bot.EditMessageCaptionParams
	answered []string
}

func (f *fakeSender) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sentMessage{chatID: p.ChatID.(int64), text: p.Text, markup: p.ReplyMarkup})
	return &models.Message{}, nil
}

func (f *fakeSender) SendPhoto(_ context.Context, p *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, p)
	return &models.Message{}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, p *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, p)
	return &models.Message{}, nil
}

func (f *fakeSender) EditMessageCaption(_ context.Context, p *bot.EditMessageCaptionParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, p)
	return &models.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, p.CallbackQueryID)
	return true, nil
}

// to returns the texts sent to chatID.
func (f *fakeSender) to(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages {
		if m.chatID == chatID {
			out = append(out, m.text)
		}
	}
	return out
}

func (f *fakeSender) last(chatID int64) sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].chatID == chatID {
			return f.messages[i]
		}
	}
	return sentMessage{}
}

func (f *fakeSender) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1].Text
}

type env struct {
	h        *Handler
	sender   *fakeSender
	repo     *repotest.Repo
	ledger   *service.LedgerService
	tasks    *service.TaskService
	sessions *session.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{
		AdminID:       adminID,
		BotUsername:   "taskbot",
		MinWithdraw:   500,
		ReferralBonus: 500,
		WalletPrefix:  "opay",
	}
	repo := repotest.New()
	e := &env{
		sender:   &fakeSender{},
		repo:     repo,
		ledger:   service.NewLedgerService(repo, cfg.ReferralBonus, cfg.WalletPrefix),
		tasks:    service.NewTaskService(repo),
		sessions: session.NewMemoryStore(),
	}
	e.h = New(Deps{
		Sender:          e.sender,
		Cfg:             cfg,
		LedgerService:   e.ledger,
		TaskService:     e.tasks,
		WithdrawService: service.NewWithdrawService(repo, cfg.MinWithdraw),
		Sessions:        e.sessions,
		BotUsername:     cfg.BotUsername,
	})

	for _, id := range []int64{adminID, userID} {
		_, _, err := e.ledger.Register(context.Background(), service.RegisterParams{ID: id, FirstName: "U"})
		require.NoError(t, err)
	}
	return e
}

func privateMessage(from int64) *models.Message {
	return &models.Message{
		ID:   100,
		Chat: models.Chat{ID: from, Type: models.ChatTypePrivate},
		From: &models.User{ID: from, FirstName: "Tester"},
	}
}

func (e *env) text(from int64, text string) {
	msg := privateMessage(from)
	msg.Text = text
	e.h.Dispatch(context.Background(), nil, &models.Update{Message: msg})
}

func (e *env) photo(from int64, fileID string) {
	msg := privateMessage(from)
	msg.Photo = []models.PhotoSize{
		{FileID: "thumb", Width: 90, Height: 90},
		{FileID: fileID, Width: 1280, Height: 720},
	}
	e.h.Dispatch(context.Background(), nil, &models.Update{Message: msg})
}

func (e *env) press(from int64, data string) {
	e.h.HandleCallbackQuery(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-" + data,
		From: models.User{ID: from},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 55, Chat: models.Chat{ID: from, Type: models.ChatTypePrivate}},
		},
	}})
}

func (e *env) state(t *testing.T, uid int64) domain.Session {
	t.Helper()
	s, err := e.sessions.Get(context.Background(), uid)
	require.NoError(t, err)
	return s
}

func (e *env) balance(t *testing.T, uid int64) int64 {
	t.Helper()
	b, err := e.ledger.Balance(context.Background(), uid)
	require.NoError(t, err)
	return b
}

func (e *env) fund(t *testing.T, uid, amount int64, wallet string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.ledger.AddBalance(ctx, uid, amount)
	require.NoError(t, err)
	if wallet != "" {
		require.NoError(t, e.ledger.SetWallet(ctx, uid, wallet))
	}
}

func callbackData(markup models.ReplyMarkup) []string {
	kb, ok := markup.(*models.InlineKeyboardMarkup)
	if !ok {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.CallbackData != "" {
				out = append(out, b.CallbackData)
			}
		}
	}
	return out
}

func TestStartCreditsAndNotifiesReferrer(t *testing.T) {
	e := newEnv(t)
	start := middleware.UserLoader(e.ledger, nil)(e.h.handleStart)

	msg := privateMessage(3)
	msg.Text = "/start 2"
	start(context.Background(), nil, &models.Update{Message: msg})

	assert.Equal(t, int64(500), e.balance(t, userID))
	require.Len(t, e.sender.to(userID), 1)
	assert.Contains(t, e.sender.to(userID)[0], "You earned 500 coins")

	welcome := e.sender.last(3)
	assert.Contains(t, welcome.text, "WELCOME")
	menu, ok := welcome.markup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, menu.Keyboard, len(tg.MainMenu(false).Keyboard))

	// second /start: no bonus, no notification
	start(context.Background(), nil, &models.Update{Message: msg})
	assert.Equal(t, int64(500), e.balance(t, userID))
	assert.Len(t, e.sender.to(userID), 1)
}

func TestStartShowsAdminMenu(t *testing.T) {
	e := newEnv(t)
	msg := privateMessage(adminID)
	msg.Text = "/start"
	e.h.handleStart(context.Background(), nil, &models.Update{Message: msg})

	menu, ok := e.sender.last(adminID).markup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, menu.Keyboard, len(tg.MainMenu(true).Keyboard))
}

func TestMenuLabelResetsFlow(t *testing.T) {
	e := newEnv(t)
	e.text(userID, tg.MenuSetWallet)
	assert.Equal(t, domain.StateWallet, e.state(t, userID).State)

	e.text(userID, tg.MenuDashboard)
	assert.True(t, e.state(t, userID).Idle())
	assert.Contains(t, e.sender.last(userID).text, "Balance: 0")
}

func TestWalletFlow(t *testing.T) {
	e := newEnv(t)
	e.text(userID, tg.MenuSetWallet)
	assert.Contains(t, e.sender.last(userID).text, "OPAY only")

	e.text(userID, "palmpay 0801")
	assert.Contains(t, e.sender.last(userID).text, "Only OPAY wallet allowed")
	assert.Equal(t, domain.StateWallet, e.state(t, userID).State)

	e.text(userID, "  OPay 0801  ")
	assert.Contains(t, e.sender.last(userID).text, "Wallet saved")
	assert.True(t, e.state(t, userID).Idle())

	u, err := e.ledger.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "OPay 0801", u.WalletOrEmpty())
}

func TestWithdrawMenuWithoutWalletAsksForWallet(t *testing.T) {
	e := newEnv(t)
	e.text(userID, tg.MenuWithdraw)
	assert.Equal(t, domain.StateWallet, e.state(t, userID).State)
	assert.Contains(t, e.sender.last(userID).text, "wallet is not set")
}

func TestWithdrawFlow(t *testing.T) {
	e := newEnv(t)
	e.fund(t, userID, 600, "opay 0801")

	e.text(userID, tg.MenuWithdraw)
	assert.Equal(t, domain.StateWithdraw, e.state(t, userID).State)
	assert.Contains(t, e.sender.last(userID).text, "your balance: 600")

	e.text(userID, "six hundred")
	assert.Equal(t, "❌ Enter numbers only", e.sender.last(userID).text)
	assert.Equal(t, domain.StateWithdraw, e.state(t, userID).State)

	e.text(userID, "150")
	assert.Contains(t, e.sender.last(userID).text, "Minimum withdraw amount is 500")
	assert.Equal(t, domain.StateWithdraw, e.state(t, userID).State)

	e.text(userID, "700")
	assert.Contains(t, e.sender.last(userID).text, "Insufficient balance (600)")

	e.text(userID, "600")
	assert.Contains(t, e.sender.last(userID).text, "Withdraw request of 600 coins submitted")
	assert.True(t, e.state(t, userID).Idle())

	adminMsg := e.sender.last(adminID)
	assert.Contains(t, adminMsg.text, "Wallet: opay 0801")
	assert.Equal(t, []string{"withdraw:approve:2", "withdraw:reject:2"}, callbackData(adminMsg.markup))

	// a second request while the first is pending
	e.text(userID, tg.MenuWithdraw)
	e.text(userID, "600")
	assert.Contains(t, e.sender.last(userID).text, "already have a pending")
	assert.Equal(t, domain.StateWithdraw, e.state(t, userID).State)

	e.press(adminID, "withdraw:approve:2")
	assert.Zero(t, e.balance(t, userID))
	assert.Equal(t, "✅ Withdrawal approved", e.sender.lastEdit())
	assert.Contains(t, e.sender.last(userID).text, "has been approved")

	// pressing again finds nothing pending
	sent := len(e.sender.to(userID))
	e.press(adminID, "withdraw:approve:2")
	assert.Len(t, e.sender.to(userID), sent)
	assert.Zero(t, e.balance(t, userID))
}

func TestWithdrawRejectLegacyPayload(t *testing.T) {
	e := newEnv(t)
	e.fund(t, userID, 800, "opay 1")
	e.text(userID, tg.MenuWithdraw)
	e.text(userID, "500")

	e.press(adminID, "reject_2")
	assert.Equal(t, int64(800), e.balance(t, userID))
	assert.Equal(t, "❌ Withdrawal rejected", e.sender.lastEdit())
	assert.Equal(t, domain.WithdrawStatusRejected, e.repo.Withdraws()[0].Status)
}

func TestProofFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task, err := e.tasks.Create(ctx, "Join", "Join our channel", "https://t.me/chan", 200)
	require.NoError(t, err)

	e.text(userID, tg.MenuTasks)
	listing := e.sender.last(userID)
	assert.Contains(t, listing.text, "📌 Join")
	assert.Equal(t, []string{"proof:submit:1"}, callbackData(listing.markup))

	e.press(userID, "proof:submit:1")
	assert.Equal(t, domain.Session{UserID: userID, State: domain.StateSendProof, TaskID: task.ID}, withoutTime(e.state(t, userID)))

	// text while waiting for a photo is rejected and keeps the state
	e.text(userID, "here is my proof")
	assert.Contains(t, e.sender.last(userID).text, "send your screenshot as a photo")
	assert.Equal(t, domain.StateSendProof, e.state(t, userID).State)

	e.photo(userID, "file-big")
	assert.True(t, e.state(t, userID).Idle())
	assert.Equal(t, "✅ Proof sent for review", e.sender.last(userID).text)
	require.Len(t, e.sender.photos, 1)
	photo := e.sender.photos[0]
	assert.Equal(t, adminID, photo.ChatID)
	assert.Equal(t, &models.InputFileString{Data: "file-big"}, photo.Photo)
	assert.Equal(t, []string{"proof:approve:2:1", "proof:reject:2:1"}, callbackData(photo.ReplyMarkup))

	// pending proof locks the button
	e.text(userID, tg.MenuTasks)
	assert.Equal(t, []string{"proof:done"}, callbackData(e.sender.last(userID).markup))
	e.press(userID, "proof:submit:1")
	assert.Contains(t, e.sender.last(userID).text, "already completed")

	// only the admin decides
	e.press(userID, "proof:approve:2:1")
	assert.Zero(t, e.balance(t, userID))

	e.press(adminID, "proof:approve:2:1")
	assert.Equal(t, int64(200), e.balance(t, userID))
	require.NotEmpty(t, e.sender.captions)
	assert.Equal(t, "✅ Proof approved", e.sender.captions[len(e.sender.captions)-1].Caption)
	assert.Contains(t, e.sender.last(userID).text, "approved! +200")

	// duplicate approval does not credit twice
	e.press(adminID, "approve_2_1")
	assert.Equal(t, int64(200), e.balance(t, userID))
}

func TestProofRejectAllowsResubmission(t *testing.T) {
	e := newEnv(t)
	_, err := e.tasks.Create(context.Background(), "Follow", "r", "https://x.com/a", 50)
	require.NoError(t, err)

	e.press(userID, "proof_1")
	e.photo(userID, "f1")
	e.press(adminID, "reject_2_1")
	assert.Contains(t, e.sender.last(userID).text, "rejected")
	assert.Zero(t, e.balance(t, userID))

	e.text(userID, tg.MenuTasks)
	assert.Equal(t, []string{"proof:submit:1"}, callbackData(e.sender.last(userID).markup))

	// rejecting again is a silent no-op
	captions := len(e.sender.captions)
	e.press(adminID, "reject_2_1")
	assert.Len(t, e.sender.captions, captions)
}

func TestPhotoOutsideProofStateIgnored(t *testing.T) {
	e := newEnv(t)
	e.photo(userID, "f")
	assert.Empty(t, e.sender.photos)
	assert.Empty(t, e.sender.to(userID))
}

func TestAdminTaskWizard(t *testing.T) {
	e := newEnv(t)
	e.text(adminID, tg.MenuAdminPanel)
	assert.Equal(t, []string{"admin:add_task", "admin:remove_task", "admin:users", "admin:withdraws"},
		callbackData(e.sender.last(adminID).markup))

	e.press(adminID, "admin:add_task")
	assert.Equal(t, domain.StateTaskTitle, e.state(t, adminID).State)
	assert.Equal(t, "✏️ Send TASK TITLE", e.sender.lastEdit())

	// an ordinary user keeps an independent slot
	e.text(userID, tg.MenuSetWallet)
	assert.Equal(t, domain.StateTaskTitle, e.state(t, adminID).State)

	e.text(adminID, "Follow us")
	e.text(adminID, "Follow the account")
	e.text(adminID, "https://x.com/us")
	assert.Equal(t, domain.TaskDraft{Title: "Follow us", Rule: "Follow the account", Link: "https://x.com/us"},
		e.state(t, adminID).Draft)

	e.text(adminID, "lots")
	assert.Contains(t, e.sender.last(adminID).text, "Reward must be a number")
	assert.Equal(t, domain.StateTaskReward, e.state(t, adminID).State)

	e.text(adminID, "250")
	assert.Contains(t, e.sender.last(adminID).text, "Task 'Follow us' added")
	assert.True(t, e.state(t, adminID).Idle())

	tasks, err := e.tasks.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(250), tasks[0].Reward)
}

func TestAdminMenuLabelAbandonsWizard(t *testing.T) {
	e := newEnv(t)
	e.press(adminID, "add_task")
	e.text(adminID, "Title")
	e.text(adminID, tg.MenuHelp)
	assert.True(t, e.state(t, adminID).Idle())
	assert.Contains(t, e.sender.last(adminID).text, "How it works")
}

func TestNonAdminIsIgnoredForAdminActions(t *testing.T) {
	e := newEnv(t)
	e.text(userID, tg.MenuAdminPanel)
	assert.Empty(t, e.sender.to(userID))

	e.press(userID, "admin:add_task")
	e.press(userID, "users")
	assert.True(t, e.state(t, userID).Idle())
	assert.Empty(t, e.sender.edits)
	assert.Len(t, e.sender.answered, 2)
}

func TestAdminRemoveTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	task, err := e.tasks.Create(ctx, "Old", "r", "https://t.me/x", 10)
	require.NoError(t, err)
	require.NoError(t, e.tasks.SubmitProof(ctx, userID, task.ID, "f"))

	e.press(adminID, "admin:remove_task")
	assert.Equal(t, "Select a task to remove:", e.sender.lastEdit())
	last := e.sender.edits[len(e.sender.edits)-1]
	assert.Equal(t, []string{"task:delete:1"}, callbackData(last.ReplyMarkup))

	e.press(adminID, "task:delete:1")
	assert.Equal(t, "✅ Task 1 removed successfully", e.sender.lastEdit())
	assert.Zero(t, e.repo.Proofs())

	e.press(adminID, "del_1")
	assert.Contains(t, e.sender.lastEdit(), "already removed")
}

func TestAdminStats(t *testing.T) {
	e := newEnv(t)
	e.press(adminID, "admin:users")
	assert.Equal(t, "👥 Total users: 2", e.sender.lastEdit())

	e.press(adminID, "admin:withdraws")
	assert.Equal(t, "No pending withdraws", e.sender.lastEdit())

	e.fund(t, userID, 900, "opay 9")
	e.text(userID, tg.MenuWithdraw)
	e.text(userID, "900")
	e.press(adminID, "withdraws")
	assert.Contains(t, e.sender.lastEdit(), "User: 2, Amount: 900, Wallet: opay 9")
}

func TestReferralMenus(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.ledger.Register(context.Background(), service.RegisterParams{ID: 5, ReferrerID: ptr(userID)})
	require.NoError(t, err)

	e.text(userID, tg.MenuReferrals)
	text := e.sender.last(userID).text
	assert.Contains(t, text, "https://t.me/taskbot?start=2")
	assert.Contains(t, text, "Friends invited: 1")

	e.text(userID, tg.MenuBonus)
	assert.Contains(t, e.sender.last(userID).text, "Bonus earned: 500")

	e.text(userID, tg.MenuReferralLink)
	assert.True(t, strings.HasSuffix(e.sender.last(userID).text, "https://t.me/taskbot?start=2"))
}

func TestCallbacksAlwaysAnswered(t *testing.T) {
	e := newEnv(t)
	e.press(userID, "garbage")
	e.press(userID, "done_already")
	assert.Equal(t, []string{"cb-garbage", "cb-done_already"}, e.sender.answered)
	assert.Contains(t, e.sender.last(userID).text, "already completed")
}

func TestIgnoresGroupChats(t *testing.T) {
	e := newEnv(t)
	msg := privateMessage(userID)
	msg.Chat.Type = models.ChatTypeGroup
	msg.Text = tg.MenuDashboard
	e.h.Dispatch(context.Background(), nil, &models.Update{Message: msg})
	assert.Empty(t, e.sender.messages)
}

func withoutTime(s domain.Session) domain.Session {
	s.UpdatedAt = time.Time{}
	return s
}

func ptr(v int64) *int64 { return &v }

func TestWizardStateOfNonAdminIsDropped(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.sessions.Save(context.Background(),
		domain.Session{UserID: userID, State: domain.StateTaskRule, Draft: domain.TaskDraft{Title: "x"}}))

	e.text(userID, "Some rule")
	assert.True(t, e.state(t, userID).Idle())
	assert.Empty(t, e.sender.messages)

	tasks, err := e.tasks.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRegisteredHandlersRouteUpdates(t *testing.T) {
	e := newEnv(t)
	b, err := bot.New("1:test", bot.WithSkipGetMe(), bot.WithDefaultHandler(e.h.Dispatch))
	require.NoError(t, err)
	e.h.Register(b)

	b.ProcessUpdate(context.Background(), &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-legacy",
		From: models.User{ID: userID},
		Data: "done_already",
	}})
	assert.Equal(t, []string{"cb-legacy"}, e.sender.answered)
	assert.Contains(t, e.sender.last(userID).text, "already completed")

	msg := privateMessage(userID)
	msg.Text = tg.MenuHelp
	b.ProcessUpdate(context.Background(), &models.Update{Message: msg})
	assert.Contains(t, e.sender.last(userID).text, "How it works")
}

func TestDispatchIgnoresCallbacks(t *testing.T) {
	e := newEnv(t)
	e.h.Dispatch(context.Background(), nil, &models.Update{CallbackQuery: &models.CallbackQuery{
		ID: "cb", From: models.User{ID: userID}, Data: "done_already",
	}})
	assert.Empty(t, e.sender.answered)
}
