package middleware

import (
	"context"
	"log"
	"net/http"

	"namhatta-management/backend/internal/authz"
)

// PolicyEvaluator decides whether a role may call method on path.
type PolicyEvaluator interface {
	Allow(ctx context.Context, role, method, path string) (bool, error)
}

// Authorizer gates requests on the route policy. It must run after the
// Authenticator so the authorization context is present.
type Authorizer struct {
	policy PolicyEvaluator
}

// NewAuthorizer returns route-policy middleware backed by the evaluator.
func NewAuthorizer(policy PolicyEvaluator) *Authorizer {
	return &Authorizer{policy: policy}
}

// Wrap returns next guarded by the route policy.
func (a *Authorizer) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := authz.FromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		allowed, err := a.policy.Allow(r.Context(), string(ac.Role), r.Method, r.URL.Path)
		if err != nil {
			log.Printf("middleware: policy evaluation failed: %v", err)
			writeServerError(w)
			return
		}
		if !allowed {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":   "Forbidden",
				"message": "Access denied",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
