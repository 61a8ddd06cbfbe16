// Package handler serves readiness/liveness for Kubernetes, load balancers, and CI.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the route policy evaluates.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves GET /api/health.
type Handler struct {
	db     Pinger
	policy PolicyChecker
}

// New returns a health handler. Either dependency may be nil; nil checks pass.
func New(db Pinger, policy PolicyChecker) *Handler {
	return &Handler{db: db, policy: policy}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Check runs each dependency probe with a short timeout and reports 200 when
// all pass, 503 otherwise.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			checks["database"] = "down"
			healthy = false
		} else {
			checks["database"] = "up"
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			log.Printf("health: policy check failed: %v", err)
			checks["policy"] = "down"
			healthy = false
		} else {
			checks["policy"] = "up"
		}
	}

	status := http.StatusOK
	body := healthResponse{Status: "ok", Checks: checks}
	if !healthy {
		status = http.StatusServiceUnavailable
		body.Status = "degraded"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("health: write response: %v", err)
	}
}
