package domain

import "time"

// Event is a single telemetry event produced by the backend: an HTTP request
// observation or an authentication lifecycle event.
type Event struct {
	ID         string    `json:"id"`
	EventType  string    `json:"eventType"`
	Source     string    `json:"source"`
	Username   string    `json:"username,omitempty"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	Status     int       `json:"status,omitempty"`
	DurationMS int64     `json:"durationMs,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Event types emitted by the backend.
const (
	EventHTTPRequest  = "http_request"
	EventLoginSuccess = "login_success"
	EventLoginFailure = "login_failure"
	EventLogout       = "logout"
)

// SourceBackend identifies events originating from the API server.
const SourceBackend = "backend"
