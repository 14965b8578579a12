// Package session keeps the per-user conversation context between updates.
package session

import (
	"context"

	"github.com/set-night/taskearn/internal/domain"
)

// Store persists one domain.Session per user id. Get returns an idle session
// for users that have none.
type Store interface {
	Get(ctx context.Context, userID int64) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context, userID int64) error
}
