package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/set-night/taskearn/internal/domain"
	tg "github.com/set-night/taskearn/internal/telegram"
)

func (h *Handler) handleMenu(ctx context.Context, msg *models.Message, label string) {
	uid := msg.From.ID
	chatID := msg.Chat.ID

	switch label {
	case tg.MenuReferralLink:
		h.replyMenu(ctx, chatID, fmt.Sprintf("📎 Here's your referral link:\n%s", h.referralLink(uid)))
	case tg.MenuDashboard:
		h.handleDashboard(ctx, chatID, uid)
	case tg.MenuTasks:
		h.handleTasks(ctx, chatID, uid)
	case tg.MenuWithdraw:
		h.handleWithdrawMenu(ctx, chatID, uid)
	case tg.MenuSetWallet:
		if h.saveSession(ctx, chatID, domain.Session{UserID: uid, State: domain.StateWallet}) {
			h.reply(ctx, chatID, fmt.Sprintf("Send wallet details (%s only)", h.walletName()), nil)
		}
	case tg.MenuBonus:
		h.handleBonus(ctx, chatID, uid)
	case tg.MenuReferrals:
		h.handleReferrals(ctx, chatID, uid)
	case tg.MenuHelp:
		h.handleHelp(ctx, chatID)
	case tg.MenuAdminPanel:
		if h.cfg.IsAdmin(uid) {
			h.handleAdminPanel(ctx, chatID)
		}
	}
}

func (h *Handler) handleDashboard(ctx context.Context, chatID, uid int64) {
	d, err := h.ledger.Dashboard(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "load dashboard")
		return
	}

	wallet := d.User.WalletOrEmpty()
	if wallet == "" {
		wallet = "not set"
	}
	h.replyMenu(ctx, chatID, fmt.Sprintf(
		"📊 Dashboard\n\n💰 Balance: %d\n🏦 Wallet: %s\n✅ Tasks completed: %d",
		d.User.Balance, wallet, d.Completed))
}

func (h *Handler) handleHelp(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("ℹ How it works\n\n")
	sb.WriteString(fmt.Sprintf("1. Open %s and complete a task.\n", tg.MenuTasks))
	sb.WriteString("2. Press 📸 Submit Proof and send a screenshot.\n")
	sb.WriteString("3. Once the admin approves it, the reward is added to your balance.\n")
	sb.WriteString(fmt.Sprintf("4. Set your %s wallet and withdraw from %d coins.\n\n", h.walletName(), h.withdraws.MinWithdraw()))
	sb.WriteString(fmt.Sprintf("🎁 Every friend who joins with your link earns you %d coins.", h.ledger.ReferralBonus()))
	if h.cfg.ContactURL != "" {
		sb.WriteString(fmt.Sprintf("\n\n📱 Contact Admin: %s", h.cfg.ContactURL))
	}
	h.replyMenu(ctx, chatID, sb.String())
}
