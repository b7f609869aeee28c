// Package cart keeps a user's pending selections. Carts know nothing about stock;
// availability is only checked at checkout.
package cart

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("cart line not found")
)

type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PriceLookup resolves a product's current unit price in USD.
type PriceLookup interface {
	Price(productID string) (decimal.Decimal, error)
}

type Cart struct {
	mu    sync.Mutex
	lines []Line
}

func New() *Cart { return &Cart{} }

// AddLine merges into an existing line for the product, otherwise appends.
func (c *Cart) AddLine(productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	if productID == "" {
		return fmt.Errorf("product id required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(productID); i >= 0 {
		if qty > math.MaxInt-c.lines[i].Quantity {
			return fmt.Errorf("%w: %d more of %s overflows", ErrInvalidQuantity, qty, productID)
		}
		c.lines[i].Quantity += qty
		return nil
	}
	c.lines = append(c.lines, Line{ProductID: productID, Quantity: qty})
	return nil
}

func (c *Cart) RemoveLine(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(productID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLineNotFound, productID)
	}
	c.lines[i].Quantity = qty
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Checkout hands a copy of the lines to fn while holding the cart, so no
// other checkout or edit can interleave. Lines are cleared only when fn
// returns nil.
func (c *Cart) Checkout(fn func(lines []Line) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	if err := fn(lines); err != nil {
		return err
	}
	c.lines = nil
	return nil
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal prices every line with the current catalog price. Nothing is cached.
func (c *Cart) Subtotal(prices PriceLookup) (decimal.Decimal, error) {
	return Subtotal(c.Lines(), prices)
}

func Subtotal(lines []Line, prices PriceLookup) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range lines {
		p, err := prices.Price(l.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(p.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum, nil
}

func (c *Cart) index(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
