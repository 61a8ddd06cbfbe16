package otel

import (
	"context"
	"strconv"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"namhatta-management/backend/internal/telemetry"
	"namhatta-management/backend/internal/telemetry/domain"
)

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger("namhatta.telemetry")}
}

// NewEventEmitterWithLogger returns an EventEmitter over an explicit logger.
// Used by tests to capture emitted records.
func NewEventEmitterWithLogger(logger recordLogger) telemetry.EventEmitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Event) error { return nil }

// recordLogger is the subset of otellog.Logger the emitter uses.
type recordLogger interface {
	Emit(ctx context.Context, rec otellog.Record)
}

type otelEmitter struct {
	logger recordLogger
}

// Emit converts the telemetry event to an OTel log record and emits it. Best-effort; errors are logged.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	if !event.CreatedAt.IsZero() {
		rec.SetTimestamp(event.CreatedAt)
	}
	rec.SetBody(otellog.StringValue(event.EventType))
	if event.ID != "" {
		rec.AddAttributes(otellog.String("event_id", event.ID))
	}
	if event.EventType != "" {
		rec.AddAttributes(otellog.String("event_type", event.EventType))
	}
	if event.Source != "" {
		rec.AddAttributes(otellog.String("source", event.Source))
	}
	if event.Username != "" {
		rec.AddAttributes(otellog.String("username", event.Username))
	}
	if event.Method != "" {
		rec.AddAttributes(otellog.String("http_method", event.Method))
	}
	if event.Path != "" {
		rec.AddAttributes(otellog.String("http_path", event.Path))
	}
	if event.Status != 0 {
		rec.AddAttributes(otellog.String("http_status", strconv.Itoa(event.Status)))
	}
	if event.DurationMS != 0 {
		rec.AddAttributes(otellog.Int64("duration_ms", event.DurationMS))
	}
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now().UTC())
	}
	e.logger.Emit(ctx, rec)
	return nil
}
