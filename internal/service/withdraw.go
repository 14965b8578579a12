package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/metrics"
	"github.com/set-night/taskearn/internal/repository"
)

type WithdrawService struct {
	repo        repository.Repo
	minWithdraw int64
}

func NewWithdrawService(repo repository.Repo, minWithdraw int64) *WithdrawService {
	return &WithdrawService{repo: repo, minWithdraw: minWithdraw}
}

func (s *WithdrawService) MinWithdraw() int64 { return s.minWithdraw }

// ParseAmount accepts digits only.
func ParseAmount(text string) (int64, error) {
	if text == "" {
		return 0, domain.ErrNotNumeric
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, domain.ErrNotNumeric
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	return n, nil
}

// Request files a pending withdraw. Checks run in order: minimum amount,
// balance, wallet, then the one-pending-per-user rule.
func (s *WithdrawService) Request(ctx context.Context, userID, amount int64) (*domain.Withdraw, error) {
	w, err := s.request(ctx, userID, amount)
	metrics.WithdrawRequests.WithLabelValues(requestOutcome(err)).Inc()
	return w, err
}

func (s *WithdrawService) request(ctx context.Context, userID, amount int64) (*domain.Withdraw, error) {
	if amount < s.minWithdraw {
		return nil, domain.ErrBelowMinimum
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		user = &domain.User{ID: userID}
	}
	if amount > user.Balance {
		return nil, &domain.InsufficientBalanceError{Balance: user.Balance}
	}
	if !user.HasWallet() {
		return nil, domain.ErrWalletNotSet
	}

	return s.repo.InsertPendingWithdraw(ctx, repository.InsertWithdrawParams{
		UserID: userID,
		Amount: amount,
		Wallet: user.WalletOrEmpty(),
	})
}

func requestOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAccepted
	case errors.Is(err, domain.ErrBelowMinimum):
		return metrics.OutcomeBelowMinimum
	case errors.Is(err, domain.ErrInsufficientBalance):
		return metrics.OutcomeInsufficient
	case errors.Is(err, domain.ErrWalletNotSet):
		return metrics.OutcomeNoWallet
	case errors.Is(err, domain.ErrWithdrawPending):
		return metrics.OutcomeDuplicate
	default:
		return metrics.OutcomeError
	}
}

// Approve debits the amount recorded on the pending request and marks that
// request approved. ErrWithdrawNotFound means nothing was pending.
func (s *WithdrawService) Approve(ctx context.Context, userID int64) (*domain.Withdraw, error) {
	w, err := s.decide(ctx, userID, domain.WithdrawStatusApproved)
	if err != nil {
		return nil, err
	}
	metrics.WithdrawDecisions.WithLabelValues(metrics.DecisionApproved).Inc()
	return w, nil
}

// Reject marks the pending request rejected. The balance is left alone.
func (s *WithdrawService) Reject(ctx context.Context, userID int64) (*domain.Withdraw, error) {
	w, err := s.decide(ctx, userID, domain.WithdrawStatusRejected)
	if err != nil {
		return nil, err
	}
	metrics.WithdrawDecisions.WithLabelValues(metrics.DecisionRejected).Inc()
	return w, nil
}

func (s *WithdrawService) decide(ctx context.Context, userID int64, status domain.WithdrawStatus) (*domain.Withdraw, error) {
	var w *domain.Withdraw
	err := s.repo.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		w, err = q.GetPendingWithdrawForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if status == domain.WithdrawStatusApproved {
			if _, err := q.AddBalance(ctx, userID, -w.Amount); err != nil {
				return fmt.Errorf("debit balance: %w", err)
			}
		}
		if err := q.SetWithdrawStatus(ctx, w.ID, status); err != nil {
			return err
		}
		w.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WithdrawService) Pending(ctx context.Context) ([]domain.Withdraw, error) {
	return s.repo.ListPendingWithdraws(ctx)
}
