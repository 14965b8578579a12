package domain

import "time"

type Task struct {
	ID     int64
	Title  string
	Rule   string
	Link   string
	Reward int64
}

type TaskCompletion struct {
	UserID      int64
	TaskID      int64
	CompletedAt time.Time
}

type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "pending"
	ProofStatusRejected ProofStatus = "rejected"
)

type Proof struct {
	UserID    int64
	TaskID    int64
	Status    ProofStatus
	FileID    string
	CreatedAt time.Time
}

// Locked reports whether the proof blocks a new submission.
func (p *Proof) Locked() bool {
	return p != nil && p.Status != ProofStatusRejected
}

// TaskStatus is the per-user view of a task.
type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)
