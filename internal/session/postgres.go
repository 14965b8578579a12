package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/set-night/taskearn/internal/domain"
	"github.com/set-night/taskearn/internal/repository"
)

// PostgresStore keeps sessions in the ledger database so a restart does not
// drop users out of a flow.
type PostgresStore struct {
	queries *repository.Queries
	ttl     time.Duration
}

func NewPostgresStore(queries *repository.Queries, ttl time.Duration) *PostgresStore {
	return &PostgresStore{queries: queries, ttl: ttl}
}

func (p *PostgresStore) Get(ctx context.Context, userID int64) (domain.Session, error) {
	s, found, err := p.queries.GetSession(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if found && p.ttl > 0 && time.Since(s.UpdatedAt) > p.ttl {
		return domain.Session{UserID: userID}, nil
	}
	return s, nil
}

func (p *PostgresStore) Save(ctx context.Context, s domain.Session) error {
	if s.Idle() {
		return p.Clear(ctx, s.UserID)
	}
	return p.queries.SaveSession(ctx, s)
}

func (p *PostgresStore) Clear(ctx context.Context, userID int64) error {
	if err := p.queries.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RunCleanup deletes expired sessions every interval until ctx is done.
func (p *PostgresStore) RunCleanup(ctx context.Context, interval time.Duration) {
	if p.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.queries.DeleteStaleSessions(ctx, int64(p.ttl.Seconds()))
			if err != nil {
				slog.Error("cleanup stale sessions", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("stale sessions removed", "count", n)
			}
		}
	}
}
