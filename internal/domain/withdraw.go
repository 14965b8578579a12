package domain

import "time"

type WithdrawStatus string

const (
	WithdrawStatusPending  WithdrawStatus = "pending"
	WithdrawStatusApproved WithdrawStatus = "approved"
	WithdrawStatusRejected WithdrawStatus = "rejected"
)

type Withdraw struct {
	ID        int64
	UserID    int64
	Amount    int64
	Wallet    string
	Status    WithdrawStatus
	CreatedAt time.Time
	DecidedAt *time.Time
}
