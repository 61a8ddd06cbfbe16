package repository

import (
	"context"
	"database/sql"

	"namhatta-management/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	uid := sql.NullInt64{Int64: a.UserID, Valid: a.UserID != 0}
	uname := sql.NullString{String: a.Username, Valid: a.Username != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, username, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, uid, uname, a.Action, a.Resource, a.IP, meta, a.CreatedAt)
	return err
}

// List returns audit logs newest first, paginated.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, username, action, resource, ip, metadata, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AuditLog{}
	for rows.Next() {
		var a domain.AuditLog
		var uid sql.NullInt64
		var uname, meta sql.NullString
		if err := rows.Scan(&a.ID, &uid, &uname, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		if uid.Valid {
			a.UserID = uid.Int64
		}
		a.Username = uname.String
		a.Metadata = meta.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
