package repository

import (
	"context"

	"namhatta-management/backend/internal/namhatta/domain"
)

// Repository defines read access to namhattas. The auth core uses
// DistrictsBySupervisor for scope derivation; the listing handler uses the
// List methods with the caller's derived scope applied.
type Repository interface {
	// DistrictsBySupervisor returns the distinct districts of active namhattas
	// that list userID as district supervisor, ordered by name. An account
	// supervising nothing gets an empty slice, not nil-is-error.
	DistrictsBySupervisor(ctx context.Context, userID int64) ([]string, error)
	// List returns active namhattas, paginated.
	List(ctx context.Context, limit, offset int32) ([]*domain.Namhatta, error)
	// ListInDistricts returns active namhattas whose district is in districts, paginated.
	// An empty districts slice matches nothing.
	ListInDistricts(ctx context.Context, districts []string, limit, offset int32) ([]*domain.Namhatta, error)
}
