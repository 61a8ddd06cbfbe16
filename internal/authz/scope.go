package authz

import (
	"context"
	"fmt"

	userdomain "namhatta-management/backend/internal/user/domain"
)

// SupervisedDistrictsGetter returns the distinct districts of resources that
// list a user as district supervisor (e.g. the namhatta repository).
type SupervisedDistrictsGetter interface {
	DistrictsBySupervisor(ctx context.Context, userID int64) ([]string, error)
}

// ScopeResolver builds the authorization context for an authenticated account.
// District scope is derived live from resource assignments on every request,
// so a changed assignment is reflected on the caller's next request with no
// synchronization step.
type ScopeResolver struct {
	districts SupervisedDistrictsGetter
}

// NewScopeResolver returns a ScopeResolver deriving supervisor scope from districts.
func NewScopeResolver(districts SupervisedDistrictsGetter) *ScopeResolver {
	return &ScopeResolver{districts: districts}
}

// Resolve derives the authorization context for the given account. The role
// mapping is exhaustive over the closed role set; an unknown role is an error,
// never a silent fallback to some default scope.
func (r *ScopeResolver) Resolve(ctx context.Context, userID int64, username string, role userdomain.Role) (*Context, error) {
	switch role {
	case userdomain.RoleAdmin, userdomain.RoleOffice:
		return &Context{
			UserID:   userID,
			Username: username,
			Role:     role,
			Unscoped: true,
		}, nil
	case userdomain.RoleDistrictSupervisor:
		districts, err := r.districts.DistrictsBySupervisor(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("derive district scope: %w", err)
		}
		if districts == nil {
			districts = []string{}
		}
		return &Context{
			UserID:    userID,
			Username:  username,
			Role:      role,
			Unscoped:  false,
			Districts: districts,
		}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}
