package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ariefcatur/freshpodd-orders/internal/kafka"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/redisx"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Deduper claims a key once; *redisx.Dedup implements it.
type Deduper interface {
	MarkOnce(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Mailer does the actual delivery. Real mail is out of scope; LogMailer logs.
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

type LogMailer struct {
	Log zerolog.Logger
}

func (m LogMailer) Send(_ context.Context, n Notification) error {
	m.Log.Info().
		Str("product_id", n.ProductID).
		Str("email", n.Email).
		Msg("sending back-in-stock email")
	return nil
}

// Delivery consumes the back-in-stock topic (cmd/notifier).
type Delivery struct {
	Dedup       Deduper
	Mailer      Mailer
	Metrics     *metrics.Metrics
	ServiceName string
	Log         zerolog.Logger
}

// HandleBackInStock dipasang sebagai handler consumer. Returning nil commits the offset.
func (d *Delivery) HandleBackInStock(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		d.Log.Warn().Err(err).Msg("drop undecodable message")
		return nil
	}
	if env.EventType != orders.EventBackInStock {
		return nil
	}

	// 2) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, d.ServiceName, env.EventID)
	if d.Dedup != nil {
		first, err := d.Dedup.MarkOnce(ctx, dkey)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			d.Log.Debug().Str("event_id", env.EventID).Msg("duplicate delivery skipped")
			return nil
		}
	}

	// 3) decode payload
	p, err := kafka.UnwrapPayload[orders.BackInStockPayload](env.Payload)
	if err != nil {
		d.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("drop bad payload")
		return nil
	}

	if err := d.Mailer.Send(ctx, Notification{ProductID: p.ProductID, Email: p.Email}); err != nil {
		d.Metrics.Notification("delivery_failed")
		if d.Dedup != nil {
			// lepas key supaya redelivery bisa coba lagi
			_ = d.Dedup.Release(ctx, dkey)
		}
		return err
	}
	d.Metrics.Notification("delivered")
	return nil
}
