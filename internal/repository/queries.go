package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/taskearn/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Querier is the ledger surface used by the services.
type Querier interface {
	// users
	CreateUser(ctx context.Context, arg CreateUserParams) (bool, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	AddBalance(ctx context.Context, id, delta int64) (int64, error)
	SetWallet(ctx context.Context, id int64, wallet string) error
	CountUsers(ctx context.Context) (int64, error)
	CountReferrals(ctx context.Context, referrerID int64) (int64, error)

	// tasks
	CreateTask(ctx context.Context, arg CreateTaskParams) (*domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	DeleteProofsByTask(ctx context.Context, taskID int64) error
	DeleteCompletionsByTask(ctx context.Context, taskID int64) error
	InsertCompletion(ctx context.Context, userID, taskID int64) (bool, error)
	IsCompleted(ctx context.Context, userID, taskID int64) (bool, error)
	CountCompletions(ctx context.Context, userID int64) (int64, error)

	// proofs
	UpsertProof(ctx context.Context, arg UpsertProofParams) error
	GetProof(ctx context.Context, userID, taskID int64) (*domain.Proof, error)
	DeleteProof(ctx context.Context, userID, taskID int64) (bool, error)

	// withdraws
	InsertPendingWithdraw(ctx context.Context, arg InsertWithdrawParams) (*domain.Withdraw, error)
	GetPendingWithdraw(ctx context.Context, userID int64) (*domain.Withdraw, error)
	GetPendingWithdrawForUpdate(ctx context.Context, userID int64) (*domain.Withdraw, error)
	SetWithdrawStatus(ctx context.Context, id int64, status domain.WithdrawStatus) error
	ListPendingWithdraws(ctx context.Context) ([]domain.Withdraw, error)
}

// Repo is a Querier that can also run a function inside one transaction.
type Repo interface {
	Querier
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

var _ Querier = (*Queries)(nil)

// Store binds Queries to a pool so multi-statement operations can run in a
// transaction.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Queries: New(pool), pool: pool}
}

var _ Repo = (*Store)(nil)

func (s *Store) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(s.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
