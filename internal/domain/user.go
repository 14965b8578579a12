package domain

import "time"

type User struct {
	ID         int64
	FirstName  string
	Username   string
	Balance    int64
	Wallet     *string
	ReferredBy *int64
	CreatedAt  time.Time
}

func (u *User) HasWallet() bool {
	return u.Wallet != nil && *u.Wallet != ""
}

// WalletOrEmpty returns the stored wallet or an empty string.
func (u *User) WalletOrEmpty() string {
	if u.Wallet == nil {
		return ""
	}
	return *u.Wallet
}

type ReferralStats struct {
	Referred    int64
	BonusEarned int64
}
