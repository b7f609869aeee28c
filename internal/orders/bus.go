package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"strconv"
	"time"
)

// Sink is the outbound queue of one topic; *kafka.Producer implements it.
type Sink interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafkago.Header) error
}

// EventBus wraps payloads in a v1 Envelope and routes them to the topic's sink.
type EventBus struct {
	Sinks    map[string]Sink
	Producer string
}

func (b *EventBus) Publish(ctx context.Context, topic, eventType, correlationID string, payload any) error {
	sink, ok := b.Sinks[topic]
	if !ok {
		return fmt.Errorf("no sink for topic %s", topic)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      b.Producer,
		TraceID:       TraceIDFrom(ctx),
		CorrelationID: correlationID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return sink.Publish(ctx, PartitionKey(correlationID), value,
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}

type traceKey struct{}

func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
