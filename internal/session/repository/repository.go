package repository

import (
	"context"
	"time"

	"namhatta-management/backend/internal/session/domain"
)

// Registry defines persistence for login sessions. It is the single source of
// truth for whether an access token is still honored.
type Registry interface {
	// Create invalidates every active session for userID and inserts a fresh
	// one in the same transaction, returning the new session and the number of
	// sessions superseded. The invalidate-then-create ordering guarantees a
	// crashed create cannot leave two active rows and that the last concurrent
	// login wins.
	Create(ctx context.Context, userID int64) (*domain.Session, int64, error)
	// Validate reports whether an active session matches username and token,
	// refreshing its last-activity timestamp when it does. Wrong token,
	// inactive session, and no session at all are indistinguishable.
	Validate(ctx context.Context, username, token string) (bool, error)
	// InvalidateOne deactivates the matching session. Idempotent; a missing or
	// already-inactive row is not an error.
	InvalidateOne(ctx context.Context, username, token string) error
	// InvalidateAll deactivates every active session owned by username and
	// returns how many were affected.
	InvalidateAll(ctx context.Context, username string) (int64, error)
	// DeleteInactiveBefore removes inactive sessions whose last activity
	// predates cutoff. Janitorial; nothing depends on it running promptly.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
