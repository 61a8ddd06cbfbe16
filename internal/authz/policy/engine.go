// Package policy evaluates role-based route access with OPA Rego.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const routePolicyQuery = "data.namhatta.routes.allow"

// defaultRegoPolicy encodes the route access matrix: ADMIN everywhere; OFFICE
// everywhere except admin-only routes; DISTRICT_SUPERVISOR read-only and kept
// out of admin and supervisor-management routes.
const defaultRegoPolicy = `package namhatta.routes

default allow = false

allow if {
	input.role == "ADMIN"
}

allow if {
	input.role == "OFFICE"
	not admin_only
}

allow if {
	input.role == "DISTRICT_SUPERVISOR"
	input.method == "GET"
	not admin_only
	not office_only
}

admin_only if {
	startswith(input.path, "/api/admin")
}

admin_only if {
	input.method == "DELETE"
}

office_only if {
	startswith(input.path, "/api/district-supervisors")
}
`

// Evaluator decides whether a role may call a route.
type Evaluator interface {
	// Allow reports whether role may perform method on path. Errors mean the
	// engine itself failed; callers must fail closed.
	Allow(ctx context.Context, role, method, path string) (bool, error)
	// HealthCheck verifies the policy compiles and evaluates.
	HealthCheck(ctx context.Context) error
}

// OPAEvaluator evaluates the route policy using the in-process OPA Rego engine.
type OPAEvaluator struct {
	compiler *ast.Compiler
}

// NewOPAEvaluator compiles the route policy once and returns an evaluator.
func NewOPAEvaluator() (*OPAEvaluator, error) {
	modules := map[string]string{"routes.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile route policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler}, nil
}

// Allow evaluates the route policy for the given role, method, and path.
func (e *OPAEvaluator) Allow(ctx context.Context, role, method, path string) (bool, error) {
	input := map[string]interface{}{
		"role":   role,
		"method": method,
		"path":   path,
	}
	q := rego.New(
		rego.Query(routePolicyQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval route policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("route policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("route policy result is not a boolean")
	}
	return allowed, nil
}

// HealthCheck verifies that the compiled policy evaluates for a minimal input.
// Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Allow(ctx, "ADMIN", "GET", "/api/health")
	return err
}
