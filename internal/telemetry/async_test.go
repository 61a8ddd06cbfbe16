package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"namhatta-management/backend/internal/telemetry/domain"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*domain.Event
	emitErr error
	delay   time.Duration
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{EventType: domain.EventHTTPRequest}

	// Should not panic
	EmitAsync(nil, ctx, event)
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx := context.Background()

	// Should not panic
	EmitAsync(emitter, ctx, nil)

	// Give goroutine time to run (if it starts)
	time.Sleep(10 * time.Millisecond)

	if events := emitter.getEvents(); len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx := context.Background()
	event := &domain.Event{
		EventType: domain.EventLoginSuccess,
		Source:    domain.SourceBackend,
		Username:  "admin",
	}

	EmitAsync(emitter, ctx, event)

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType != domain.EventLoginSuccess {
		t.Errorf("event type = %q, want %q", events[0].EventType, domain.EventLoginSuccess)
	}
	if events[0].Username != "admin" {
		t.Errorf("event username = %q, want %q", events[0].Username, "admin")
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel the request context immediately

	event := &domain.Event{EventType: domain.EventHTTPRequest}

	// Should still emit even though request context is cancelled
	EmitAsync(emitter, ctx, event)

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)

	if events := emitter.getEvents(); len(events) != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", len(events))
	}
}

func TestEmitAsync_ErrorHandling(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: context.DeadlineExceeded}
	ctx := context.Background()
	event := &domain.Event{EventType: domain.EventHTTPRequest}

	// Should not panic on error
	EmitAsync(emitter, ctx, event)

	// Wait for goroutine to complete
	time.Sleep(100 * time.Millisecond)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, ctx, &domain.Event{EventType: domain.EventHTTPRequest})
		}()
	}

	wg.Wait()
	// Wait for all async emits to complete
	time.Sleep(200 * time.Millisecond)

	if events := emitter.getEvents(); len(events) != 10 {
		t.Errorf("expected 10 events, got %d", len(events))
	}
}
