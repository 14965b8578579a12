package handler

import (
	"github.com/set-night/taskearn/internal/config"
	"github.com/set-night/taskearn/internal/service"
	"github.com/set-night/taskearn/internal/session"
	"github.com/set-night/taskearn/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	sender      telegram.Sender
	cfg         *config.Config
	ledger      *service.LedgerService
	tasks       *service.TaskService
	withdraws   *service.WithdrawService
	sessions    session.Store
	tgLogger    *telegram.TelegramLogger
	botUsername string
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Sender          telegram.Sender
	Cfg             *config.Config
	LedgerService   *service.LedgerService
	TaskService     *service.TaskService
	WithdrawService *service.WithdrawService
	Sessions        session.Store
	TgLogger        *telegram.TelegramLogger
	BotUsername     string
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		sender:      deps.Sender,
		cfg:         deps.Cfg,
		ledger:      deps.LedgerService,
		tasks:       deps.TaskService,
		withdraws:   deps.WithdrawService,
		sessions:    deps.Sessions,
		tgLogger:    deps.TgLogger,
		botUsername: deps.BotUsername,
	}
}
