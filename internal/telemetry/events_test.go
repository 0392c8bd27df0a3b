package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-service/internal/mocks"
	"social-service/internal/observability"
)

func TestEmitWrapsPayload(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewEventEmitter(publisher, "social-service", "test")
	emitter.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	var captured EventEnvelope
	publisher.On("Publish", mock.Anything, "friendship.requested", mock.AnythingOfType("telemetry.EventEnvelope")).
		Run(func(args mock.Arguments) { captured = args.Get(2).(EventEnvelope) }).
		Return(nil).Once()

	ctx := observability.WithRequestID(context.Background(), "req-1")
	emitter.Emit(ctx, "friendship.requested", map[string]string{"id": "abc"})

	publisher.AssertExpectations(t)
	require.Equal(t, "friendship.requested", captured.EventType)
	assert.Equal(t, 1, captured.SchemaVersion)
	assert.Equal(t, "social-service", captured.Service)
	assert.Equal(t, "req-1", captured.RequestID)
	assert.Equal(t, "2024-05-01T12:00:00Z", captured.OccurredAt)
	assert.Equal(t, map[string]string{"id": "abc"}, captured.Payload)
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("Publish", mock.Anything, "message.sent", mock.Anything).Return(errors.New("channel closed")).Once()

	emitter := NewEventEmitter(publisher, "social-service", "test")
	assert.NotPanics(t, func() { emitter.Emit(context.Background(), "message.sent", nil) })
	publisher.AssertExpectations(t)
}

func TestEmitNilEmitter(t *testing.T) {
	var emitter *EventEmitter
	assert.NotPanics(t, func() { emitter.Emit(context.Background(), "x", nil) })
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "social-service", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
