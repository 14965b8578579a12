package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/metrics"
	"github.com/set-night/taskearn/internal/repository"
)

type LedgerService struct {
	repo          repository.Repo
	referralBonus int64
	walletPrefix  string
}

func NewLedgerService(repo repository.Repo, referralBonus int64, walletPrefix string) *LedgerService {
	return &LedgerService{
		repo:          repo,
		referralBonus: referralBonus,
		walletPrefix:  strings.ToLower(walletPrefix),
	}
}

type RegisterParams struct {
	ID         int64
	FirstName  string
	Username   string
	ReferrerID *int64
}

// Register creates the user on first contact. The referrer is credited with
// the referral bonus only when the user is new, the referrer id differs from
// the user's own id and the referrer is already registered. created reports
// whether this call created the user.
func (s *LedgerService) Register(ctx context.Context, arg RegisterParams) (user *domain.User, created bool, err error) {
	var bonusCredited bool
	err = s.repo.ExecTx(ctx, func(q repository.Querier) error {
		referrer, err := s.validReferrer(ctx, q, arg.ID, arg.ReferrerID)
		if err != nil {
			return err
		}

		created, err = q.CreateUser(ctx, repository.CreateUserParams{
			ID:         arg.ID,
			FirstName:  arg.FirstName,
			Username:   arg.Username,
			ReferredBy: referrer,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if created && referrer != nil {
			if _, err := q.AddBalance(ctx, *referrer, s.referralBonus); err != nil {
				return fmt.Errorf("credit referral bonus: %w", err)
			}
			bonusCredited = true
		}

		user, err = q.GetUser(ctx, arg.ID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if bonusCredited {
		metrics.ReferralBonuses.Inc()
	}
	return user, created, nil
}

func (s *LedgerService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// Balance returns zero for unknown users.
func (s *LedgerService) Balance(ctx context.Context, id int64) (int64, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return u.Balance, nil
}

// AddBalance credits (or debits, for a negative amount) the user and returns
// the new balance.
func (s *LedgerService) AddBalance(ctx context.Context, id, amount int64) (int64, error) {
	balance, err := s.repo.AddBalance(ctx, id, amount)
	if err != nil {
		return 0, fmt.Errorf("add balance: %w", err)
	}
	return balance, nil
}

// SetWallet stores value when it starts with the wallet provider prefix,
// ignoring case and surrounding spaces.
func (s *LedgerService) SetWallet(ctx context.Context, id int64, value string) error {
	value = strings.TrimSpace(value)
	if !s.ValidWallet(value) {
		return domain.ErrInvalidWallet
	}
	if err := s.repo.SetWallet(ctx, id, value); err != nil {
		return fmt.Errorf("set wallet: %w", err)
	}
	return nil
}

func (s *LedgerService) ValidWallet(value string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), s.walletPrefix)
}

func (s *LedgerService) WalletPrefix() string { return s.walletPrefix }

func (s *LedgerService) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}

// Dashboard is the per-user summary shown by the dashboard menu.
type Dashboard struct {
	User      *domain.User
	Completed int64
}

func (s *LedgerService) Dashboard(ctx context.Context, id int64) (*Dashboard, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountCompletions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count completions: %w", err)
	}
	return &Dashboard{User: u, Completed: completed}, nil
}
