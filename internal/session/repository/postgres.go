package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"namhatta-management/backend/internal/session/domain"
)

type PostgresRegistry struct {
	db *sql.DB
}

// NewPostgresRegistry returns a session registry that uses the given db for persistence.
func NewPostgresRegistry(db *sql.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

// Create deactivates all active sessions for userID and inserts a new one,
// all within one transaction. The initial SELECT ... FOR UPDATE on the parent
// user row serializes session-state transitions per account even when no
// session rows exist yet: a concurrent Create on the same account blocks until
// this transaction commits, so the later login always sees and deactivates the
// earlier one, and no two callers can both insert an active row.
func (r *PostgresRegistry) Create(ctx context.Context, userID int64) (*domain.Session, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE id = $1 FOR UPDATE", userID).Scan(&lockedID)
	if err != nil {
		return nil, 0, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE user_sessions SET is_active = FALSE, last_activity_at = now() WHERE user_id = $1 AND is_active",
		userID)
	if err != nil {
		return nil, 0, err
	}
	superseded, err := res.RowsAffected()
	if err != nil {
		return nil, 0, err
	}

	session := &domain.Session{UserID: userID, Token: uuid.NewString(), Active: true}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO user_sessions (user_id, session_token, is_active, created_at, last_activity_at)
		 VALUES ($1, $2, TRUE, now(), now())
		 RETURNING id, created_at, last_activity_at`,
		userID, session.Token,
	).Scan(&session.ID, &session.CreatedAt, &session.LastActivityAt)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return session, superseded, nil
}

// Validate atomically checks for an active session matching username and token
// and refreshes last_activity_at. The single UPDATE takes a row lock on the
// matched session, so it serializes against Create and InvalidateAll; a
// session being superseded is never validated by a racing request.
func (r *PostgresRegistry) Validate(ctx context.Context, username, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions s SET last_activity_at = now()
		FROM users u
		WHERE u.id = s.user_id AND u.username = $1 AND s.session_token = $2 AND s.is_active`,
		username, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// InvalidateOne deactivates the session matching username and token if it is
// still active. Missing or already-inactive rows are a no-op, not an error.
func (r *PostgresRegistry) InvalidateOne(ctx context.Context, username, token string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions s SET is_active = FALSE, last_activity_at = now()
		FROM users u
		WHERE u.id = s.user_id AND u.username = $1 AND s.session_token = $2 AND s.is_active`,
		username, token)
	return err
}

// InvalidateAll deactivates every active session owned by username and returns
// the number of rows affected.
func (r *PostgresRegistry) InvalidateAll(ctx context.Context, username string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_sessions s SET is_active = FALSE, last_activity_at = now()
		FROM users u
		WHERE u.id = s.user_id AND u.username = $1 AND s.is_active`,
		username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteInactiveBefore removes inactive session rows whose last activity
// predates cutoff. Runs as a single statement so it never holds locks that
// request handling needs.
func (r *PostgresRegistry) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_sessions WHERE NOT is_active AND last_activity_at < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
