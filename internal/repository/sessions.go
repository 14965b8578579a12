package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskearn/internal/domain"
)

// GetSession returns the stored conversation context. found is false when the
// user has none.
func (q *Queries) GetSession(ctx context.Context, userID int64) (s domain.Session, found bool, err error) {
	var draft []byte
	err = q.db.QueryRow(ctx, `
		SELECT user_id, state, task_id, draft, updated_at
		FROM sessions
		WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.State, &s.TaskID, &draft, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{UserID: userID}, false, nil
		}
		return domain.Session{}, false, fmt.Errorf("select session: %w", err)
	}
	if err := json.Unmarshal(draft, &s.Draft); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session draft: %w", err)
	}
	return s, true, nil
}

func (q *Queries) SaveSession(ctx context.Context, s domain.Session) error {
	draft, err := json.Marshal(s.Draft)
	if err != nil {
		return fmt.Errorf("encode session draft: %w", err)
	}
	_, err = q.db.Exec(ctx, `
		INSERT INTO sessions (user_id, state, task_id, draft, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state, task_id = EXCLUDED.task_id, draft = EXCLUDED.draft, updated_at = now()
	`, s.UserID, s.State, s.TaskID, draft)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (q *Queries) DeleteSession(ctx context.Context, userID int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

// DeleteStaleSessions removes sessions untouched for longer than maxAgeSeconds.
func (q *Queries) DeleteStaleSessions(ctx context.Context, maxAgeSeconds int64) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM sessions WHERE updated_at < now() - $1::bigint * interval '1 second'
	`, maxAgeSeconds)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CheckAndIncrementRateLimit bumps the per-chat counter of the current
// minute window and returns the new count.
func (q *Queries) CheckAndIncrementRateLimit(ctx context.Context, chatID int64) (int, error) {
	var count int
	err := q.db.QueryRow(ctx, `
		INSERT INTO rate_limits (chat_id, window_start, count)
		VALUES ($1, date_trunc('minute', now()), 1)
		ON CONFLICT (chat_id) DO UPDATE
		SET count = CASE
				WHEN rate_limits.window_start = date_trunc('minute', now()) THEN rate_limits.count + 1
				ELSE 1
			END,
			window_start = date_trunc('minute', now())
		RETURNING count
	`, chatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}
	return count, nil
}
