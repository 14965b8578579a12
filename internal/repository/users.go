package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskearn/internal/domain"
)

type CreateUserParams struct {
	ID         int64
	FirstName  string
	Username   string
	ReferredBy *int64
}

// CreateUser inserts the user unless it already exists and reports whether a
// row was created.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		INSERT INTO users (id, first_name, username, referred_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, arg.ID, arg.FirstName, arg.Username, arg.ReferredBy)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, `
		SELECT id, first_name, username, balance, wallet, referred_by, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.FirstName, &u.Username, &u.Balance, &u.Wallet, &u.ReferredBy, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (q *Queries) UserExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// AddBalance upserts the user with balance incremented by delta and returns
// the new balance. delta may be negative.
func (q *Queries) AddBalance(ctx context.Context, id, delta int64) (int64, error) {
	var balance int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO users (id, balance) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET balance = users.balance + EXCLUDED.balance
		RETURNING balance
	`, id, delta).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("add balance: %w", err)
	}
	return balance, nil
}

func (q *Queries) SetWallet(ctx context.Context, id int64, wallet string) error {
	tag, err := q.db.Exec(ctx, `UPDATE users SET wallet = $2 WHERE id = $1`, id, wallet)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (q *Queries) CountReferrals(ctx context.Context, referrerID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE referred_by = $1`, referrerID).Scan(&n)
	return n, err
}
