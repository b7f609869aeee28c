// Package notify tracks back-in-stock requests and hands them to a transport
// once the product is replenished.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var ErrInvalidSubscription = errors.New("invalid stock subscription")

var validate = validator.New()

type Notification struct {
	ProductID string `json:"product_id"`
	Email     string `json:"email"`
}

// Emitter delivers one notification to the outside world.
type Emitter interface {
	Emit(ctx context.Context, n Notification) error
}

type Registry struct {
	mu      sync.Mutex
	subs    []Notification
	emitter Emitter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewRegistry(e Emitter, m *metrics.Metrics, log zerolog.Logger) *Registry {
	return &Registry{
		emitter: e,
		metrics: m,
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// Subscribe records a request. The same (product, email) pair may be
// subscribed more than once; each copy fires.
func (r *Registry) Subscribe(productID, email string) error {
	productID, email = strings.TrimSpace(productID), strings.TrimSpace(email)
	if productID == "" {
		return fmt.Errorf("%w: product id required", ErrInvalidSubscription)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: email %q", ErrInvalidSubscription, email)
	}
	r.mu.Lock()
	r.subs = append(r.subs, Notification{ProductID: productID, Email: email})
	r.mu.Unlock()
	return nil
}

func (r *Registry) Pending(productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subs {
		if s.ProductID == productID {
			n++
		}
	}
	return n
}

// Flush removes every subscription for the product and emits one
// notification each, in subscription order. Returns how many were consumed.
func (r *Registry) Flush(ctx context.Context, productID string) int {
	r.mu.Lock()
	var due []Notification
	kept := r.subs[:0]
	for _, s := range r.subs {
		if s.ProductID == productID {
			due = append(due, s)
			continue
		}
		kept = append(kept, s)
	}
	r.subs = kept
	r.mu.Unlock()

	for _, n := range due {
		if err := r.emitter.Emit(ctx, n); err != nil {
			r.metrics.Notification("failed")
			r.log.Error().Err(err).Str("product_id", n.ProductID).Str("email", n.Email).Msg("emit back-in-stock")
			continue
		}
		r.metrics.Notification("emitted")
	}
	if len(due) > 0 {
		r.log.Info().Str("product_id", productID).Int("subscribers", len(due)).Msg("restock notifications emitted")
	}
	return len(due)
}
