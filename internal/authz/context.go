// Package authz derives and carries the per-request authorization context:
// who the caller is, their role, and which districts they may see.
package authz

import (
	"context"

	userdomain "namhatta-management/backend/internal/user/domain"
)

// Context is the request-scoped authorization context. It is computed once by
// the auth middleware, attached to the request, and read by every downstream
// resource query. Never persisted.
//
// Unscoped and Districts must not be conflated: Unscoped means "permitted
// everywhere"; an empty Districts slice with Unscoped false means "permitted
// nowhere."
type Context struct {
	UserID   int64
	Username string
	Role     userdomain.Role
	// Unscoped is true for roles with no geographic restriction.
	Unscoped bool
	// Districts is the ordered set of permitted districts. Meaningful only
	// when Unscoped is false.
	Districts []string
}

type contextKey struct{ name string }

var authzKey = contextKey{"authz"}

// WithContext returns ctx carrying the authorization context.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, authzKey, ac)
}

// FromContext returns the authorization context and true if set; otherwise nil, false.
func FromContext(ctx context.Context) (*Context, bool) {
	ac, ok := ctx.Value(authzKey).(*Context)
	return ac, ok
}
