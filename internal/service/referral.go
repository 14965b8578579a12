package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/repository"
)

// ParseReferrer extracts the referrer id from a /start payload. Anything that
// is not a plain integer yields nil.
func ParseReferrer(payload string) *int64 {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil
	}
	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

// ReferralLink is the deep link that registers a new user with id as referrer.
func ReferralLink(botUsername string, id int64) string {
	return fmt.Sprintf("https://t.me/%s?start=%d", strings.TrimPrefix(botUsername, "@"), id)
}

func (s *LedgerService) ReferralBonus() int64 { return s.referralBonus }

func (s *LedgerService) ReferralStats(ctx context.Context, id int64) (domain.ReferralStats, error) {
	n, err := s.repo.CountReferrals(ctx, id)
	if err != nil {
		return domain.ReferralStats{}, fmt.Errorf("count referrals: %w", err)
	}
	return domain.ReferralStats{Referred: n, BonusEarned: n * s.referralBonus}, nil
}

func (s *LedgerService) validReferrer(ctx context.Context, q repository.Querier, userID int64, referrer *int64) (*int64, error) {
	if referrer == nil || *referrer == userID {
		return nil, nil
	}
	exists, err := q.UserExists(ctx, *referrer)
	if err != nil {
		return nil, fmt.Errorf("check referrer: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return referrer, nil
}
