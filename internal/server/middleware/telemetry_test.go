package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"namhatta-management/backend/internal/telemetry/domain"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (c *captureEmitter) Emit(_ context.Context, event *domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureEmitter) waitForEvent(t *testing.T) *domain.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.events) > 0 {
			event := c.events[0]
			c.mu.Unlock()
			return event
		}
		c.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no telemetry event emitted")
	return nil
}

func TestTelemetryEmitsRequestEvent(t *testing.T) {
	emitter := &captureEmitter{}
	mw := NewTelemetry(emitter)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setAuthenticatedUser(r.Context(), "admin")
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	mw.Wrap(next).ServeHTTP(rec, r)

	event := emitter.waitForEvent(t)
	if event.EventType != domain.EventHTTPRequest {
		t.Errorf("event type = %q", event.EventType)
	}
	if event.Method != http.MethodPost || event.Path != "/api/auth/login" {
		t.Errorf("method/path = %s %s", event.Method, event.Path)
	}
	if event.Status != http.StatusCreated {
		t.Errorf("status = %d, want 201", event.Status)
	}
	if event.Username != "admin" {
		t.Errorf("username = %q, want admin", event.Username)
	}
	if event.ID == "" || event.Source != domain.SourceBackend {
		t.Errorf("id=%q source=%q", event.ID, event.Source)
	}
}

func TestTelemetryDefaultsTo200(t *testing.T) {
	emitter := &captureEmitter{}
	mw := NewTelemetry(emitter)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handler writes nothing.
	})

	rec := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if event := emitter.waitForEvent(t); event.Status != http.StatusOK {
		t.Errorf("status = %d, want 200", event.Status)
	}
}

func TestTelemetryNilEmitterPassThrough(t *testing.T) {
	mw := NewTelemetry(nil)
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Fatal("next handler not called")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	if got := ClientIP(r); got != "10.1.2.3" {
		t.Errorf("ClientIP = %q, want 10.1.2.3", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.9" {
		t.Errorf("ClientIP = %q, want first forwarded hop", got)
	}
}

func TestWithClientIP(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIPFromContext(r.Context())
	})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"

	WithClientIP(next).ServeHTTP(httptest.NewRecorder(), r)

	if got != "192.0.2.7" {
		t.Fatalf("context IP = %q, want 192.0.2.7", got)
	}
}
