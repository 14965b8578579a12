package handler

import (
	"context"
	"fmt"

	"github.com/set-night/taskearn/internal/service"
)

func (h *Handler) referralLink(uid int64) string {
	return service.ReferralLink(h.botUsername, uid)
}

func (h *Handler) handleReferrals(ctx context.Context, chatID, uid int64) {
	stats, err := h.ledger.ReferralStats(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "referral stats")
		return
	}

	h.replyMenu(ctx, chatID, fmt.Sprintf(
		"🔥✨ INVITE FRIENDS & EARN COINS ✨🔥\n\n📎 %s\n\n👥 Friends invited: %d",
		h.referralLink(uid), stats.Referred))
}

func (h *Handler) handleBonus(ctx context.Context, chatID, uid int64) {
	stats, err := h.ledger.ReferralStats(ctx, uid)
	if err != nil {
		h.fail(ctx, chatID, err, "referral stats")
		return
	}

	h.replyMenu(ctx, chatID, fmt.Sprintf(
		"🎁 Referral Bonus\n\nYou get %d coins for every friend who starts the bot with your link.\n\n💰 Bonus earned: %d",
		h.ledger.ReferralBonus(), stats.BonusEarned))
}
