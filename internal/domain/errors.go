package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAlreadyDone     = errors.New("task already completed or proof pending")
	ErrProofNotFound       = errors.New("proof not found")
	ErrInvalidWallet       = errors.New("wallet does not match the required provider")
	ErrWalletNotSet        = errors.New("wallet not set")
	ErrNotNumeric          = errors.New("amount must contain digits only")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWithdrawPending     = errors.New("withdraw request already pending")
	ErrWithdrawNotFound    = errors.New("no pending withdraw request")
)

// InsufficientBalanceError carries the balance a withdraw request was checked
// against. It matches ErrInsufficientBalance with errors.Is.
type InsufficientBalanceError struct {
	Balance int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s (%d)", ErrInsufficientBalance, e.Balance)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }
