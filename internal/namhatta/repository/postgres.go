package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"namhatta-management/backend/internal/namhatta/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a namhatta repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const namhattaColumns = "id, code, name, district, district_supervisor_id, is_active, created_at, updated_at"

// DistrictsBySupervisor returns the distinct districts of active namhattas
// supervised by userID. This is queried on every request from a
// DISTRICT_SUPERVISOR account, so scope follows assignment changes with no
// separate synchronization.
func (r *PostgresRepository) DistrictsBySupervisor(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT district FROM namhattas
		WHERE district_supervisor_id = $1 AND is_active AND district <> ''
		ORDER BY district`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	districts := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

// List returns active namhattas ordered by name, paginated.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Namhatta, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+namhattaColumns+" FROM namhattas WHERE is_active ORDER BY name LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNamhattas(rows)
}

// ListInDistricts returns active namhattas in the given districts, ordered by
// name, paginated. An empty districts slice matches nothing; callers must not
// use it to mean "all".
func (r *PostgresRepository) ListInDistricts(ctx context.Context, districts []string, limit, offset int32) ([]*domain.Namhatta, error) {
	if len(districts) == 0 {
		return []*domain.Namhatta{}, nil
	}
	placeholders := make([]string, len(districts))
	args := make([]interface{}, 0, len(districts)+2)
	for i, d := range districts {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, d)
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT "+namhattaColumns+" FROM namhattas WHERE is_active AND district IN (%s) ORDER BY name LIMIT $%d OFFSET $%d",
		strings.Join(placeholders, ", "), len(districts)+1, len(districts)+2)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNamhattas(rows)
}

func scanNamhattas(rows *sql.Rows) ([]*domain.Namhatta, error) {
	out := []*domain.Namhatta{}
	for rows.Next() {
		var n domain.Namhatta
		var supervisor sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Code, &n.Name, &n.District, &supervisor, &n.Active, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		if supervisor.Valid {
			v := supervisor.Int64
			n.DistrictSupervisorID = &v
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
