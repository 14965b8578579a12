package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/metrics"
	"github.com/set-night/taskearn/internal/repository"
)

type TaskService struct {
	repo repository.Repo
}

func NewTaskService(repo repository.Repo) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) Create(ctx context.Context, title, rule, link string, reward int64) (*domain.Task, error) {
	if reward < 0 {
		return nil, domain.ErrInvalidAmount
	}
	return s.repo.CreateTask(ctx, repository.CreateTaskParams{
		Title:  title,
		Rule:   rule,
		Link:   link,
		Reward: reward,
	})
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.repo.GetTask(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx)
}

// UserTask is a task together with the caller's progress on it.
type UserTask struct {
	domain.Task
	Status domain.TaskStatus
}

// ListForUser returns every task with its status for userID.
func (s *TaskService) ListForUser(ctx context.Context, userID int64) ([]UserTask, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserTask, 0, len(tasks))
	for _, t := range tasks {
		status, err := s.status(ctx, s.repo, userID, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, UserTask{Task: t, Status: status})
	}
	return out, nil
}

func (s *TaskService) Status(ctx context.Context, userID, taskID int64) (domain.TaskStatus, error) {
	return s.status(ctx, s.repo, userID, taskID)
}

func (s *TaskService) status(ctx context.Context, q repository.Querier, userID, taskID int64) (domain.TaskStatus, error) {
	done, err := q.IsCompleted(ctx, userID, taskID)
	if err != nil {
		return "", fmt.Errorf("check completion: %w", err)
	}
	if done {
		return domain.TaskStatusCompleted, nil
	}

	proof, err := q.GetProof(ctx, userID, taskID)
	if err != nil && !errors.Is(err, domain.ErrProofNotFound) {
		return "", err
	}
	if proof.Locked() {
		return domain.TaskStatusPending, nil
	}
	return domain.TaskStatusOpen, nil
}

// Remove deletes the task together with its proofs and completions in one
// transaction.
func (s *TaskService) Remove(ctx context.Context, id int64) error {
	return s.repo.ExecTx(ctx, func(q repository.Querier) error {
		if err := q.DeleteProofsByTask(ctx, id); err != nil {
			return fmt.Errorf("delete proofs: %w", err)
		}
		if err := q.DeleteCompletionsByTask(ctx, id); err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
		deleted, err := q.DeleteTask(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrTaskNotFound
		}
		return nil
	})
}

// Complete records the completion and credits reward. It returns false
// without side effects when the pair was already recorded.
func (s *TaskService) Complete(ctx context.Context, userID, taskID, reward int64) (bool, error) {
	var credited bool
	err := s.repo.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		credited, err = complete(ctx, q, userID, taskID, reward)
		return err
	})
	if err != nil {
		return false, err
	}
	if credited {
		metrics.TaskCompletions.Inc()
	}
	return credited, nil
}

func complete(ctx context.Context, q repository.Querier, userID, taskID, reward int64) (bool, error) {
	inserted, err := q.InsertCompletion(ctx, userID, taskID)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}
	if _, err := q.AddBalance(ctx, userID, reward); err != nil {
		return false, fmt.Errorf("credit reward: %w", err)
	}
	return true, nil
}

// SubmitProof stores a pending proof. It fails with ErrTaskAlreadyDone when
// the task is completed or a proof is already waiting for a decision.
func (s *TaskService) SubmitProof(ctx context.Context, userID, taskID int64, fileID string) error {
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return err
	}
	status, err := s.status(ctx, s.repo, userID, taskID)
	if err != nil {
		return err
	}
	if status != domain.TaskStatusOpen {
		return domain.ErrTaskAlreadyDone
	}
	return s.repo.UpsertProof(ctx, repository.UpsertProofParams{
		UserID: userID,
		TaskID: taskID,
		Status: domain.ProofStatusPending,
		FileID: fileID,
	})
}

// ApproveProof credits the task reward and drops the proof row. credited is
// false when the task had already been rewarded.
func (s *TaskService) ApproveProof(ctx context.Context, userID, taskID int64) (task *domain.Task, credited bool, err error) {
	err = s.repo.ExecTx(ctx, func(q repository.Querier) error {
		task, err = q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		credited, err = complete(ctx, q, userID, taskID, task.Reward)
		if err != nil {
			return err
		}
		if _, err := q.DeleteProof(ctx, userID, taskID); err != nil {
			return fmt.Errorf("delete proof: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	metrics.ProofDecisions.WithLabelValues(metrics.DecisionApproved).Inc()
	if credited {
		metrics.TaskCompletions.Inc()
	}
	return task, credited, nil
}

// RejectProof deletes the proof so the user may submit again.
func (s *TaskService) RejectProof(ctx context.Context, userID, taskID int64) error {
	deleted, err := s.repo.DeleteProof(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrProofNotFound
	}
	metrics.ProofDecisions.WithLabelValues(metrics.DecisionRejected).Inc()
	return nil
}
