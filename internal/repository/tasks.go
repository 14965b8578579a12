package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/taskearn/internal/domain"
)

type CreateTaskParams struct {
	Title  string
	Rule   string
	Link   string
	Reward int64
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (*domain.Task, error) {
	t := domain.Task{Title: arg.Title, Rule: arg.Rule, Link: arg.Link, Reward: arg.Reward}
	err := q.db.QueryRow(ctx, `
		INSERT INTO tasks (title, rule, link, reward)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, arg.Title, arg.Rule, arg.Link, arg.Reward).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

func (q *Queries) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := q.db.QueryRow(ctx, `
		SELECT id, title, rule, link, reward FROM tasks WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Rule, &t.Link, &t.Reward)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &t, nil
}

func (q *Queries) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := q.db.Query(ctx, `SELECT id, title, rule, link, reward FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Rule, &t.Link, &t.Reward); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (q *Queries) DeleteTask(ctx context.Context, id int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (q *Queries) DeleteProofsByTask(ctx context.Context, taskID int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM proofs WHERE task_id = $1`, taskID)
	return err
}

func (q *Queries) DeleteCompletionsByTask(ctx context.Context, taskID int64) error {
	_, err := q.db.Exec(ctx, `DELETE FROM completed_tasks WHERE task_id = $1`, taskID)
	return err
}

// InsertCompletion records the (user, task) pair and reports whether it was
// new.
func (q *Queries) InsertCompletion(ctx context.Context, userID, taskID int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `
		INSERT INTO completed_tasks (user_id, task_id) VALUES ($1, $2)
		ON CONFLICT (user_id, task_id) DO NOTHING
	`, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *Queries) IsCompleted(ctx context.Context, userID, taskID int64) (bool, error) {
	var done bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM completed_tasks WHERE user_id = $1 AND task_id = $2)
	`, userID, taskID).Scan(&done)
	return done, err
}

func (q *Queries) CountCompletions(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM completed_tasks WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

type UpsertProofParams struct {
	UserID int64
	TaskID int64
	Status domain.ProofStatus
	FileID string
}

func (q *Queries) UpsertProof(ctx context.Context, arg UpsertProofParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO proofs (user_id, task_id, status, file_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, task_id) DO UPDATE
		SET status = EXCLUDED.status, file_id = EXCLUDED.file_id, created_at = now()
	`, arg.UserID, arg.TaskID, arg.Status, arg.FileID)
	if err != nil {
		return fmt.Errorf("upsert proof: %w", err)
	}
	return nil
}

func (q *Queries) GetProof(ctx context.Context, userID, taskID int64) (*domain.Proof, error) {
	var p domain.Proof
	err := q.db.QueryRow(ctx, `
		SELECT user_id, task_id, status, file_id, created_at
		FROM proofs
		WHERE user_id = $1 AND task_id = $2
	`, userID, taskID).Scan(&p.UserID, &p.TaskID, &p.Status, &p.FileID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProofNotFound
		}
		return nil, fmt.Errorf("select proof: %w", err)
	}
	return &p, nil
}

func (q *Queries) DeleteProof(ctx context.Context, userID, taskID int64) (bool, error) {
	tag, err := q.db.Exec(ctx, `DELETE FROM proofs WHERE user_id = $1 AND task_id = $2`, userID, taskID)
	if err != nil {
		return false, fmt.Errorf("delete proof: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
