// Package quotes keeps bulk and custom-build quote requests for admin review.
package quotes

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidQuote  = errors.New("invalid quote request")
	ErrQuoteNotFound = errors.New("quote not found")
	ErrInvalidStatus = errors.New("invalid quote status")
)

type Status string

const (
	StatusNew    Status = "New"
	StatusQuoted Status = "Quoted"
	StatusClosed Status = "Closed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case StatusNew:
		return StatusNew, nil
	case StatusQuoted:
		return StatusQuoted, nil
	case StatusClosed:
		return StatusClosed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Request is what a customer submits.
type Request struct {
	Name           string   `json:"name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Phone          string   `json:"phone"`
	Company        string   `json:"company,omitempty"`
	Capacity       int      `json:"capacity" validate:"gt=0"`
	Dimensions     string   `json:"dimensions,omitempty"`
	Features       []string `json:"features,omitempty"`
	OtherFeatures  string   `json:"other_features,omitempty"`
	Quantity       int      `json:"quantity" validate:"gt=0"`
	Details        string   `json:"details"`
	EstimatedQuote string   `json:"estimated_quote,omitempty"`
}

type Quote struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Status Status `json:"status"`
	Request
	seq int
}

var validate = validator.New()

type Book struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
	next   int
	now    func() time.Time
}

func NewBook(now func() time.Time) *Book {
	if now == nil {
		now = time.Now
	}
	return &Book{quotes: make(map[string]*Quote), next: 1, now: now}
}

// Submit validates and stores a request as QR001, QR002, ...
func (b *Book) Submit(req Request) (Quote, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrInvalidQuote, err)
	}
	req.Features = append([]string(nil), req.Features...)

	b.mu.Lock()
	defer b.mu.Unlock()
	q := &Quote{
		ID:      fmt.Sprintf("QR%03d", b.next),
		Date:    b.now().UTC().Format("2006-01-02"),
		Status:  StatusNew,
		Request: req,
		seq:     b.next,
	}
	b.next++
	b.quotes[q.ID] = q
	return q.copy(), nil
}

func (b *Book) Get(id string) (Quote, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.quotes[id]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	return q.copy(), nil
}

// List returns every quote, newest first.
func (b *Book) List() []Quote {
	b.mu.RLock()
	out := make([]Quote, 0, len(b.quotes))
	for _, q := range b.quotes {
		out = append(out, q.copy())
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}

func (b *Book) UpdateStatus(id string, s Status) (Quote, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return Quote{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.quotes[id]
	if !ok {
		return Quote{}, ErrQuoteNotFound
	}
	q.Status = s
	return q.copy(), nil
}

func (q *Quote) copy() Quote {
	c := *q
	c.Features = append([]string(nil), q.Features...)
	return c
}
