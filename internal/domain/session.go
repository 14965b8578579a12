package domain

import "time"

// State is the step of a multi-message flow a user is in.
type State string

const (
	StateNone       State = ""
	StateWallet     State = "wallet"
	StateWithdraw   State = "withdraw"
	StateSendProof  State = "send_proof"
	StateTaskTitle  State = "task_title"
	StateTaskRule   State = "task_rule"
	StateTaskLink   State = "task_link"
	StateTaskReward State = "task_reward"
)

// InTaskWizard reports whether s is one of the admin task-creation steps.
func (s State) InTaskWizard() bool {
	switch s {
	case StateTaskTitle, StateTaskRule, StateTaskLink, StateTaskReward:
		return true
	}
	return false
}

// TaskDraft accumulates the task-creation wizard input.
type TaskDraft struct {
	Title string `json:"title,omitempty"`
	Rule  string `json:"rule,omitempty"`
	Link  string `json:"link,omitempty"`
}

// Session is the conversation context of one user.
type Session struct {
	UserID    int64     `json:"user_id"`
	State     State     `json:"state"`
	TaskID    int64     `json:"task_id,omitempty"`
	Draft     TaskDraft `json:"draft"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reset drops the flow state and any temporary data.
func (s *Session) Reset() {
	s.State = StateNone
	s.TaskID = 0
	s.Draft = TaskDraft{}
}

func (s Session) Idle() bool {
	return s.State == StateNone && s.TaskID == 0 && s.Draft == (TaskDraft{})
}
