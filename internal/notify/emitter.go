package notify

import (
	"context"
	"errors"

	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/rs/zerolog"
)

// EventPublisher is satisfied by *orders.EventBus.
type EventPublisher interface {
	Publish(ctx context.Context, topic, eventType, correlationID string, payload any) error
}

// EventEmitter puts notifications on the back-in-stock topic.
type EventEmitter struct {
	Bus EventPublisher
}

func (e EventEmitter) Emit(ctx context.Context, n Notification) error {
	return e.Bus.Publish(ctx, orders.TopicBackInStock, orders.EventBackInStock, n.ProductID,
		orders.BackInStockPayload{ProductID: n.ProductID, Email: n.Email})
}

// LogEmitter only logs; used when no broker is configured.
type LogEmitter struct {
	Log zerolog.Logger
}

func (e LogEmitter) Emit(_ context.Context, n Notification) error {
	e.Log.Info().Str("product_id", n.ProductID).Str("email", n.Email).Msg("back in stock")
	return nil
}

// Fanout emits to every emitter and joins their errors.
type Fanout []Emitter

func (f Fanout) Emit(ctx context.Context, n Notification) error {
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
