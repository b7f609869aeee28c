package orders

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrOrderNotFound = errors.New("order not found")

// Ledger is the append-only record of committed orders. Entries are never
// removed; only Status and PaymentStatus change after Append.
type Ledger struct {
	mu     sync.RWMutex
	orders []Order
	byID   map[string]int
	seq    int
	strict bool
	now    func() time.Time
}

type Option func(*Ledger)

// WithStartSequence sets the number of the first order id (FP<n>).
func WithStartSequence(n int) Option { return func(l *Ledger) { l.seq = n } }

func WithStrictTransitions(strict bool) Option { return func(l *Ledger) { l.strict = strict } }

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		byID: make(map[string]int),
		seq:  1025,
		now:  time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Append assigns the next sequential id and records the order.
func (l *Ledger) Append(o Order) (Order, error) {
	if o.UserID == "" {
		return Order{}, fmt.Errorf("order without user")
	}
	if len(o.Lines) == 0 {
		return Order{}, fmt.Errorf("order without lines")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	o.ID = fmt.Sprintf("FP%d", l.seq)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = l.now().UTC()
	}
	if o.Status == "" {
		o.Status = StatusProcessing
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentPending
	}
	l.seq++
	l.byID[o.ID] = len(l.orders)
	l.orders = append(l.orders, o.clone())
	return o, nil
}

func (l *Ledger) Get(id string) (Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return l.orders[i].clone(), nil
}

type Filter struct {
	UserID string
	Admin  bool
}

// List returns orders newest first. Non-admin callers only see their own.
func (l *Ledger) List(f Filter) []Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Order, 0)
	for i := len(l.orders) - 1; i >= 0; i-- {
		o := l.orders[i]
		if !f.Admin && o.UserID != f.UserID {
			continue
		}
		out = append(out, o.clone())
	}
	return out
}

// Update carries optional changes; nil fields are left untouched.
type Update struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

func (l *Ledger) UpdateStatus(id string, u Update) (Order, error) {
	if u.Status != nil {
		if _, ok := rank[*u.Status]; !ok {
			return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
		}
	}
	if u.PaymentStatus != nil {
		if _, err := ParsePaymentStatus(string(*u.PaymentStatus)); err != nil {
			return Order{}, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.byID[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	o := &l.orders[i]
	if u.Status != nil {
		if l.strict && !CanTransition(o.Status, *u.Status) {
			return Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, *u.Status)
		}
		o.Status = *u.Status
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
	return o.clone(), nil
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}
