// Package repotest provides an in-memory repository.Repo for tests of the
// layers above the database.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/repository"
)

type pair struct{ user, task int64 }

type state struct {
	users       map[int64]domain.User
	tasks       map[int64]domain.Task
	completions map[pair]time.Time
	proofs      map[pair]domain.Proof
	withdraws   []domain.Withdraw
	nextTaskID  int64
	nextWdID    int64
}

func (s *state) clone() *state {
	c := &state{
		users:       make(map[int64]domain.User, len(s.users)),
		tasks:       make(map[int64]domain.Task, len(s.tasks)),
		completions: make(map[pair]time.Time, len(s.completions)),
		proofs:      make(map[pair]domain.Proof, len(s.proofs)),
		withdraws:   append([]domain.Withdraw(nil), s.withdraws...),
		nextTaskID:  s.nextTaskID,
		nextWdID:    s.nextWdID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.completions {
		c.completions[k] = v
	}
	for k, v := range s.proofs {
		c.proofs[k] = v
	}
	return c
}

// Repo mirrors the constraints of the postgres schema: user and completion
// primary keys, one pending withdraw per user, rollback on ExecTx error.
type Repo struct {
	mu sync.Mutex
	st *state

	// FailNext, when set, is returned by the next mutating call, or by the
	// next call to the method named FailOp when that is set.
	FailNext error
	FailOp   string
}

func New() *Repo {
	return &Repo{st: &state{
		users:       map[int64]domain.User{},
		tasks:       map[int64]domain.Task{},
		completions: map[pair]time.Time{},
		proofs:      map[pair]domain.Proof{},
	}}
}

var _ repository.Repo = (*Repo)(nil)

func (r *Repo) ExecTx(ctx context.Context, fn func(q repository.Querier) error) error {
	r.mu.Lock()
	snapshot := r.st.clone()
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.st = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Repo) fail(op string) error {
	if r.FailNext == nil || (r.FailOp != "" && r.FailOp != op) {
		return nil
	}
	err := r.FailNext
	r.FailNext, r.FailOp = nil, ""
	return err
}

func (r *Repo) CreateUser(_ context.Context, arg repository.CreateUserParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("CreateUser"); err != nil {
		return false, err
	}
	if _, ok := r.st.users[arg.ID]; ok {
		return false, nil
	}
	r.st.users[arg.ID] = domain.User{
		ID:         arg.ID,
		FirstName:  arg.FirstName,
		Username:   arg.Username,
		ReferredBy: arg.ReferredBy,
		CreatedAt:  time.Now(),
	}
	return true, nil
}

func (r *Repo) GetUser(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.st.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *Repo) UserExists(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.st.users[id]
	return ok, nil
}

func (r *Repo) AddBalance(_ context.Context, id, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("AddBalance"); err != nil {
		return 0, err
	}
	u, ok := r.st.users[id]
	if !ok {
		u = domain.User{ID: id, CreatedAt: time.Now()}
	}
	u.Balance += delta
	r.st.users[id] = u
	return u.Balance, nil
}

func (r *Repo) SetWallet(_ context.Context, id int64, wallet string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("SetWallet"); err != nil {
		return err
	}
	u, ok := r.st.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Wallet = &wallet
	r.st.users[id] = u
	return nil
}

func (r *Repo) CountUsers(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.st.users)), nil
}

func (r *Repo) CountReferrals(_ context.Context, referrerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.st.users {
		if u.ReferredBy != nil && *u.ReferredBy == referrerID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) CreateTask(_ context.Context, arg repository.CreateTaskParams) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("CreateTask"); err != nil {
		return nil, err
	}
	r.st.nextTaskID++
	t := domain.Task{ID: r.st.nextTaskID, Title: arg.Title, Rule: arg.Rule, Link: arg.Link, Reward: arg.Reward}
	r.st.tasks[t.ID] = t
	return &t, nil
}

func (r *Repo) GetTask(_ context.Context, id int64) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.st.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *Repo) ListTasks(context.Context) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tasks := make([]domain.Task, 0, len(r.st.tasks))
	for _, t := range r.st.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *Repo) DeleteTask(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteTask"); err != nil {
		return false, err
	}
	if _, ok := r.st.tasks[id]; !ok {
		return false, nil
	}
	delete(r.st.tasks, id)
	return true, nil
}

func (r *Repo) DeleteProofsByTask(_ context.Context, taskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteProofsByTask"); err != nil {
		return err
	}
	for k := range r.st.proofs {
		if k.task == taskID {
			delete(r.st.proofs, k)
		}
	}
	return nil
}

func (r *Repo) DeleteCompletionsByTask(_ context.Context, taskID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteCompletionsByTask"); err != nil {
		return err
	}
	for k := range r.st.completions {
		if k.task == taskID {
			delete(r.st.completions, k)
		}
	}
	return nil
}

func (r *Repo) InsertCompletion(_ context.Context, userID, taskID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertCompletion"); err != nil {
		return false, err
	}
	k := pair{userID, taskID}
	if _, ok := r.st.completions[k]; ok {
		return false, nil
	}
	r.st.completions[k] = time.Now()
	return true, nil
}

func (r *Repo) IsCompleted(_ context.Context, userID, taskID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.st.completions[pair{userID, taskID}]
	return ok, nil
}

func (r *Repo) CountCompletions(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k := range r.st.completions {
		if k.user == userID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) UpsertProof(_ context.Context, arg repository.UpsertProofParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("UpsertProof"); err != nil {
		return err
	}
	r.st.proofs[pair{arg.UserID, arg.TaskID}] = domain.Proof{
		UserID:    arg.UserID,
		TaskID:    arg.TaskID,
		Status:    arg.Status,
		FileID:    arg.FileID,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *Repo) GetProof(_ context.Context, userID, taskID int64) (*domain.Proof, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.st.proofs[pair{userID, taskID}]
	if !ok {
		return nil, domain.ErrProofNotFound
	}
	return &p, nil
}

func (r *Repo) DeleteProof(_ context.Context, userID, taskID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("DeleteProof"); err != nil {
		return false, err
	}
	k := pair{userID, taskID}
	if _, ok := r.st.proofs[k]; !ok {
		return false, nil
	}
	delete(r.st.proofs, k)
	return true, nil
}

func (r *Repo) InsertPendingWithdraw(_ context.Context, arg repository.InsertWithdrawParams) (*domain.Withdraw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("InsertPendingWithdraw"); err != nil {
		return nil, err
	}
	for _, w := range r.st.withdraws {
		if w.UserID == arg.UserID && w.Status == domain.WithdrawStatusPending {
			return nil, domain.ErrWithdrawPending
		}
	}
	r.st.nextWdID++
	w := domain.Withdraw{
		ID:        r.st.nextWdID,
		UserID:    arg.UserID,
		Amount:    arg.Amount,
		Wallet:    arg.Wallet,
		Status:    domain.WithdrawStatusPending,
		CreatedAt: time.Now(),
	}
	r.st.withdraws = append(r.st.withdraws, w)
	return &w, nil
}

func (r *Repo) GetPendingWithdraw(_ context.Context, userID int64) (*domain.Withdraw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.st.withdraws {
		if w.UserID == userID && w.Status == domain.WithdrawStatusPending {
			return &w, nil
		}
	}
	return nil, domain.ErrWithdrawNotFound
}

func (r *Repo) GetPendingWithdrawForUpdate(ctx context.Context, userID int64) (*domain.Withdraw, error) {
	return r.GetPendingWithdraw(ctx, userID)
}

func (r *Repo) SetWithdrawStatus(_ context.Context, id int64, status domain.WithdrawStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("SetWithdrawStatus"); err != nil {
		return err
	}
	for i, w := range r.st.withdraws {
		if w.ID == id && w.Status == domain.WithdrawStatusPending {
			now := time.Now()
			r.st.withdraws[i].Status = status
			r.st.withdraws[i].DecidedAt = &now
			return nil
		}
	}
	return domain.ErrWithdrawNotFound
}

func (r *Repo) ListPendingWithdraws(context.Context) ([]domain.Withdraw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Withdraw
	for _, w := range r.st.withdraws {
		if w.Status == domain.WithdrawStatusPending {
			out = append(out, w)
		}
	}
	return out, nil
}

// Withdraws returns every request ever stored, in insertion order.
func (r *Repo) Withdraws() []domain.Withdraw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Withdraw(nil), r.st.withdraws...)
}

// Proofs returns the number of stored proof rows.
func (r *Repo) Proofs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.st.proofs)
}
