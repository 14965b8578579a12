package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskearn/internal/domain"
)

const withdrawColumns = `id, user_id, amount, wallet, status, created_at, decided_at`

type InsertWithdrawParams struct {
	UserID int64
	Amount int64
	Wallet string
}

// InsertPendingWithdraw returns domain.ErrWithdrawPending when the user
// already has a pending request.
func (q *Queries) InsertPendingWithdraw(ctx context.Context, arg InsertWithdrawParams) (*domain.Withdraw, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO withdraws (user_id, amount, wallet, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+withdrawColumns, arg.UserID, arg.Amount, arg.Wallet)

	w, err := scanWithdraw(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrWithdrawPending
		}
		return nil, fmt.Errorf("insert withdraw: %w", err)
	}
	return w, nil
}

func (q *Queries) GetPendingWithdraw(ctx context.Context, userID int64) (*domain.Withdraw, error) {
	return q.getPendingWithdraw(ctx, userID, "")
}

// GetPendingWithdrawForUpdate locks the pending row until the surrounding
// transaction ends.
func (q *Queries) GetPendingWithdrawForUpdate(ctx context.Context, userID int64) (*domain.Withdraw, error) {
	return q.getPendingWithdraw(ctx, userID, "FOR UPDATE")
}

func (q *Queries) getPendingWithdraw(ctx context.Context, userID int64, lock string) (*domain.Withdraw, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+withdrawColumns+`
		FROM withdraws
		WHERE user_id = $1 AND status = 'pending'
		`+lock, userID)

	w, err := scanWithdraw(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWithdrawNotFound
		}
		return nil, fmt.Errorf("select pending withdraw: %w", err)
	}
	return w, nil
}

func (q *Queries) SetWithdrawStatus(ctx context.Context, id int64, status domain.WithdrawStatus) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE withdraws SET status = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, status)
	if err != nil {
		return fmt.Errorf("update withdraw status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawNotFound
	}
	return nil
}

func (q *Queries) ListPendingWithdraws(ctx context.Context) ([]domain.Withdraw, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+withdrawColumns+`
		FROM withdraws
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select pending withdraws: %w", err)
	}
	defer rows.Close()

	var withdraws []domain.Withdraw
	for rows.Next() {
		w, err := scanWithdraw(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdraw: %w", err)
		}
		withdraws = append(withdraws, *w)
	}
	return withdraws, rows.Err()
}

func scanWithdraw(row pgx.Row) (*domain.Withdraw, error) {
	var w domain.Withdraw
	if err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Wallet, &w.Status, &w.CreatedAt, &w.DecidedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
