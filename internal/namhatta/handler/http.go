// Package handler exposes the namhatta listing over HTTP, filtered by the
// caller's authorization context.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"namhatta-management/backend/internal/authz"
	"namhatta-management/backend/internal/namhatta/domain"
)

// Lister reads namhattas, either unfiltered or restricted to districts.
type Lister interface {
	List(ctx context.Context, limit, offset int32) ([]*domain.Namhatta, error)
	ListInDistricts(ctx context.Context, districts []string, limit, offset int32) ([]*domain.Namhatta, error)
}

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Handler serves the namhatta resource.
type Handler struct {
	repo Lister
}

// New returns a namhatta handler over the repository.
func New(repo Lister) *Handler {
	return &Handler{repo: repo}
}

type namhattaView struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	District string `json:"district"`
	Active   bool   `json:"active"`
}

type listResponse struct {
	Namhattas []namhattaView `json:"namhattas"`
	Total     int            `json:"total"`
}

func toViews(namhattas []*domain.Namhatta) []namhattaView {
	views := make([]namhattaView, 0, len(namhattas))
	for _, n := range namhattas {
		views = append(views, namhattaView{
			ID:       n.ID,
			Code:     n.Code,
			Name:     n.Name,
			District: n.District,
			Active:   n.Active,
		})
	}
	return views
}

// List handles GET /api/namhattas. Unscoped callers see everything; district
// supervisors see only their districts. An empty district set yields an empty
// list, never the full one.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ac, ok := authz.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Unauthorized",
			"message": "Invalid or expired token",
		})
		return
	}

	limit := queryInt(r, "limit", defaultLimit)
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	var (
		namhattas []*domain.Namhatta
		err       error
	)
	if ac.Unscoped {
		namhattas, err = h.repo.List(r.Context(), limit, offset)
	} else {
		namhattas, err = h.repo.ListInDistricts(r.Context(), ac.Districts, limit, offset)
	}
	if err != nil {
		log.Printf("namhatta: list failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal Server Error",
			"message": "Something went wrong",
		})
		return
	}
	views := toViews(namhattas)
	writeJSON(w, http.StatusOK, listResponse{Namhattas: views, Total: len(views)})
}

func queryInt(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("namhatta: write response: %v", err)
	}
}
