package telemetry

import (
	"context"
	"time"

	"social-service/internal/logger"
	"social-service/internal/observability"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// EventEmitter wraps domain payloads in a versioned envelope and publishes
// them with the event name as routing key.
type EventEmitter struct {
	publisher   Publisher
	service     string
	environment string
	now         func() time.Time
}

type EventEnvelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	RequestID     string `json:"request_id,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
	Payload       any    `json:"payload"`
}

func NewEventEmitter(publisher Publisher, service, environment string) *EventEmitter {
	return &EventEmitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
		now:         time.Now,
	}
}

// Emit never fails the caller; publish errors are logged and counted.
func (e *EventEmitter) Emit(ctx context.Context, eventName string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := EventEnvelope{
		SchemaVersion: 1,
		EventType:     eventName,
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     observability.RequestIDFromContext(ctx),
		TraceID:       observability.TraceIDFromContext(ctx),
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, eventName, envelope); err != nil {
		logger.Warn("event publish failed", "event", eventName, "error", err)
	}
}
