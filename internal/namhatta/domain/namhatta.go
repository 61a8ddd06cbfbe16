package domain

import "time"

// Namhatta is a managed community center. Only the fields the auth core and
// the scope-filtered listing need are modeled here; the full administrative
// record lives outside this service's scope.
type Namhatta struct {
	ID                   int64
	Code                 string
	Name                 string
	District             string
	DistrictSupervisorID *int64 // nil when no supervisor is assigned
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
