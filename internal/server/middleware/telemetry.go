package middleware

import (
	"net/http"
	"time"

	"context"

	"github.com/google/uuid"

	"namhatta-management/backend/internal/telemetry"
	"namhatta-management/backend/internal/telemetry/domain"
)

// usernameHolder lets inner middleware report the authenticated username back
// to the telemetry middleware, which runs outside the auth middleware.
type usernameHolder struct{ v string }

var usernameKey = contextKey{"telemetry-username"}

func setAuthenticatedUser(ctx context.Context, username string) {
	if h, ok := ctx.Value(usernameKey).(*usernameHolder); ok {
		h.v = username
	}
}

// Telemetry emits one http_request event per completed request. Fire-and-forget;
// a slow or absent Kafka never delays responses.
type Telemetry struct {
	emitter telemetry.EventEmitter
}

// NewTelemetry returns request-telemetry middleware. emitter may be nil; then
// Wrap is a pass-through.
func NewTelemetry(emitter telemetry.EventEmitter) *Telemetry {
	return &Telemetry{emitter: emitter}
}

// Wrap returns next instrumented with request telemetry.
func (t *Telemetry) Wrap(next http.Handler) http.Handler {
	if t.emitter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		holder := &usernameHolder{}
		r = r.WithContext(context.WithValue(r.Context(), usernameKey, holder))
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		telemetry.EmitAsync(t.emitter, r.Context(), &domain.Event{
			ID:         uuid.NewString(),
			EventType:  domain.EventHTTPRequest,
			Source:     domain.SourceBackend,
			Username:   holder.v,
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     sw.status,
			DurationMS: time.Since(start).Milliseconds(),
			CreatedAt:  time.Now().UTC(),
		})
	})
}

// statusWriter captures the response status for telemetry.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
